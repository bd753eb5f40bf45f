package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
)

// MongoDealRecordRepository implements DealRecordRepository
type MongoDealRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoDealRecordRepository creates a new deal archive repository
func NewMongoDealRecordRepository(db *mongo.Database) repository.DealRecordRepository {
	collection := db.Collection("deal_records")

	// Create unique index on dealKey
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"dealKey": 1},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	// Create index on route fields for queries
	routeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "origin", Value: 1}, {Key: "destination", Value: 1}},
	}
	collection.Indexes().CreateOne(ctx, routeIndex)

	return &MongoDealRecordRepository{
		collection: collection,
	}
}

// Save upserts an emitted deal into the archive
func (r *MongoDealRecordRepository) Save(ctx context.Context, deal *entity.DealRecord) error {
	now := time.Now()

	updateDoc := bson.M{
		"dealKey":              deal.Key(),
		"origin":               deal.Offer.Origin,
		"destination":          deal.Offer.Destination,
		"cabin":                string(deal.Offer.Cabin),
		"departureDate":        deal.Offer.DepartureDate,
		"returnDate":           deal.Offer.ReturnDate,
		"currency":             deal.Offer.Currency,
		"price":                deal.Offer.Price,
		"durationMinutes":      deal.Offer.DurationMinutes,
		"stops":                deal.Offer.Stops,
		"airlines":             deal.Offer.Airlines,
		"url":                  deal.Offer.URL,
		"pricePerHour":         deal.Offer.PricePerHour,
		"valueScore":           deal.Offer.ValueScore,
		"scrapedAt":            deal.Offer.ScrapedAt,
		"discountPct":          deal.DiscountPct,
		"baselineLowestPrice":  deal.Baseline.LowestPrice,
		"baselineObservations": deal.Baseline.ObservationCount,
		"detectedAt":           deal.DetectedAt,
		"updatedAt":            now,
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"dealKey": deal.Key()}

	_, err := r.collection.UpdateOne(
		ctx,
		filter,
		bson.M{
			"$set":         updateDoc,
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID().Hex(), "createdAt": now},
		},
		opts,
	)

	return err
}
