package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// FlightSearchRepository drives the external scraping collaborator. Any
// failure surfaces as *entity.SearchError; the collaborator is assumed to
// enforce its own timeouts.
type FlightSearchRepository interface {
	Search(ctx context.Context, task entity.SearchTask) ([]entity.RawOffer, error)
}
