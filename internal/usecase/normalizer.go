package usecase

import (
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/utils"
)

// RouteStats describes the price-per-hour distribution of the offers
// gathered for one search task, used to scale value scores.
type RouteStats struct {
	MinPricePerHour float64
	MaxPricePerHour float64
}

// OfferNormalizer converts raw scraped records into canonical offers with
// derived pricing metrics. Pure: no network access, no side effects.
type OfferNormalizer struct {
	logger logger.Logger
}

// NewOfferNormalizer creates a new offer normalizer
func NewOfferNormalizer(logger logger.Logger) *OfferNormalizer {
	return &OfferNormalizer{
		logger: logger,
	}
}

// Normalize converts one raw record into an Offer, validating its
// invariants. Unparseable or non-positive price/duration surfaces as
// *entity.MalformedOfferError. The route-level stats scale the value score;
// pass the zero value when the distribution is not known yet.
func (n *OfferNormalizer) Normalize(task entity.SearchTask, raw entity.RawOffer, stats RouteStats, scrapedAt time.Time) (*entity.Offer, error) {
	price, currency, err := utils.ParsePrice(raw.PriceText)
	if err != nil {
		return nil, &entity.MalformedOfferError{Field: "price", Reason: err.Error()}
	}
	if price <= 0 {
		return nil, &entity.MalformedOfferError{Field: "price", Reason: "price must be positive"}
	}

	duration, err := utils.ParseDurationMinutes(raw.DurationText)
	if err != nil {
		return nil, &entity.MalformedOfferError{Field: "duration", Reason: err.Error()}
	}
	if duration <= 0 {
		return nil, &entity.MalformedOfferError{Field: "duration", Reason: "duration must be positive"}
	}

	stops := 0
	if raw.StopsText != "" {
		stops, err = utils.ParseStops(raw.StopsText)
		if err != nil {
			return nil, &entity.MalformedOfferError{Field: "stops", Reason: err.Error()}
		}
	}

	cabin := task.Route.Cabin
	if raw.Cabin != "" {
		parsed, err := utils.ParseCabin(raw.Cabin)
		if err != nil {
			return nil, &entity.MalformedOfferError{Field: "cabin", Reason: err.Error()}
		}
		cabin = parsed
	}

	if task.Dates.Return != "" && task.Dates.Return < task.Dates.Departure {
		return nil, &entity.MalformedOfferError{Field: "dates", Reason: "return date precedes departure date"}
	}

	offer := &entity.Offer{
		Origin:          task.Route.Origin,
		Destination:     task.Route.Destination,
		Cabin:           cabin,
		DepartureDate:   task.Dates.Departure,
		ReturnDate:      task.Dates.Return,
		Currency:        currency,
		Price:           price,
		DurationMinutes: duration,
		Stops:           stops,
		Airlines:        raw.Airlines,
		URL:             raw.URL,
		ScrapedAt:       scrapedAt,
		PricePerHour:    price / (float64(duration) / 60.0),
	}
	offer.ValueScore = valueScore(offer.PricePerHour, stats)

	return offer, nil
}

// NormalizeBatch converts every raw record from one task, dropping
// malformed entries, and scores the survivors against the batch
// price-per-hour spread. Returns the offers and the skipped count.
func (n *OfferNormalizer) NormalizeBatch(task entity.SearchTask, raws []entity.RawOffer, scrapedAt time.Time) ([]*entity.Offer, int) {
	offers := make([]*entity.Offer, 0, len(raws))
	skipped := 0

	for _, raw := range raws {
		offer, err := n.Normalize(task, raw, RouteStats{}, scrapedAt)
		if err != nil {
			skipped++
			n.logger.Warn("Skipping malformed offer",
				"origin", task.Route.Origin,
				"destination", task.Route.Destination,
				"departure", task.Dates.Departure,
				"error", err)
			continue
		}
		offers = append(offers, offer)
	}

	stats := ComputeRouteStats(offers)
	for _, offer := range offers {
		offer.ValueScore = valueScore(offer.PricePerHour, stats)
	}

	return offers, skipped
}

// ComputeRouteStats derives the price-per-hour spread of a set of offers
func ComputeRouteStats(offers []*entity.Offer) RouteStats {
	var stats RouteStats
	for i, offer := range offers {
		if i == 0 {
			stats.MinPricePerHour = offer.PricePerHour
			stats.MaxPricePerHour = offer.PricePerHour
			continue
		}
		if offer.PricePerHour < stats.MinPricePerHour {
			stats.MinPricePerHour = offer.PricePerHour
		}
		if offer.PricePerHour > stats.MaxPricePerHour {
			stats.MaxPricePerHour = offer.PricePerHour
		}
	}
	return stats
}

// valueScore normalizes price-per-hour onto a 0-100 scale, lower is better.
// A degenerate distribution scores 50.
func valueScore(pricePerHour float64, stats RouteStats) float64 {
	if stats.MaxPricePerHour <= stats.MinPricePerHour {
		return 50
	}
	return 100 * (pricePerHour - stats.MinPricePerHour) / (stats.MaxPricePerHour - stats.MinPricePerHour)
}
