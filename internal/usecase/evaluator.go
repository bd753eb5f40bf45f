package usecase

import (
	"context"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
)

// DealEvaluator compares normalized offers against the price history and
// produces deal records for sufficiently discounted offers.
type DealEvaluator struct {
	historyRepo          repository.PriceHistoryRepository
	logger               logger.Logger
	discountThresholdPct float64
	minDurationMinutes   int
	premiumOnly          bool
}

// NewDealEvaluator creates a new deal evaluator
func NewDealEvaluator(
	historyRepo repository.PriceHistoryRepository,
	logger logger.Logger,
	discountThresholdPct float64,
	minDurationHours float64,
	premiumOnly bool,
) *DealEvaluator {
	return &DealEvaluator{
		historyRepo:          historyRepo,
		logger:               logger,
		discountThresholdPct: discountThresholdPct,
		minDurationMinutes:   int(minDurationHours * 60),
		premiumOnly:          premiumOnly,
	}
}

// Evaluate compares one offer against its historical baseline. The first
// sighting of a key records a baseline and never yields a deal. Every
// observation is folded into the history regardless of the outcome, so
// history reflects every sighting. Returns nil when the offer does not
// qualify.
func (e *DealEvaluator) Evaluate(ctx context.Context, offer *entity.Offer) (*entity.DealRecord, error) {
	route := offer.RouteKey()
	dates := offer.DatePairKey()

	baseline, err := e.historyRepo.Get(ctx, route, dates)
	if err != nil {
		return nil, err
	}

	if baseline == nil {
		// First sighting: no baseline to compare against
		if _, err := e.historyRepo.Record(ctx, route, dates, offer.Price, offer.ScrapedAt); err != nil {
			return nil, err
		}
		e.logger.Debug("First sighting recorded",
			"origin", offer.Origin,
			"destination", offer.Destination,
			"departure", offer.DepartureDate,
			"price", offer.Price)
		return nil, nil
	}

	if baseline.LowestPrice <= 0 {
		// A zero baseline would divide by zero; the history row is corrupt.
		e.logger.Error("Non-positive baseline price in history, skipping evaluation",
			"key", baseline.Key(),
			"lowestPrice", baseline.LowestPrice)
		if _, err := e.historyRepo.Record(ctx, route, dates, offer.Price, offer.ScrapedAt); err != nil {
			return nil, err
		}
		return nil, nil
	}

	discount := (baseline.LowestPrice - offer.Price) / baseline.LowestPrice * 100

	qualifies := discount >= e.discountThresholdPct &&
		e.cabinAllowed(offer.Cabin) &&
		offer.DurationMinutes >= e.minDurationMinutes

	if _, err := e.historyRepo.Record(ctx, route, dates, offer.Price, offer.ScrapedAt); err != nil {
		return nil, err
	}

	if !qualifies {
		return nil, nil
	}

	e.logger.Info("Deal detected",
		"origin", offer.Origin,
		"destination", offer.Destination,
		"departure", offer.DepartureDate,
		"return", offer.ReturnDate,
		"cabin", offer.Cabin,
		"price", offer.Price,
		"baseline", baseline.LowestPrice,
		"discountPct", discount)

	return &entity.DealRecord{
		Offer:       *offer,
		DiscountPct: discount,
		Baseline:    *baseline,
		DetectedAt:  offer.ScrapedAt,
	}, nil
}

func (e *DealEvaluator) cabinAllowed(cabin entity.Cabin) bool {
	if !e.premiumOnly {
		return true
	}
	return cabin.IsPremium()
}
