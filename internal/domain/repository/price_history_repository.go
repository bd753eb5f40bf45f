package repository

import (
	"context"
	"time"

	"farewatch-service/internal/domain/entity"
)

// PriceHistoryRepository defines the interface for price history operations.
// Get returns nil when no record exists for the key. Record updates the
// lowest/most-recent prices and the observation count, returning the
// post-update record.
type PriceHistoryRepository interface {
	Get(ctx context.Context, route entity.RouteKey, dates entity.DatePairKey) (*entity.PriceHistoryRecord, error)
	Record(ctx context.Context, route entity.RouteKey, dates entity.DatePairKey, price float64, observedAt time.Time) (*entity.PriceHistoryRecord, error)
}
