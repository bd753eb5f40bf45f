package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// DealNotifier receives finalized deal records and triggers a side effect
// (email, archive). Failures are logged by the dispatcher, not retried.
type DealNotifier interface {
	Name() string
	Notify(ctx context.Context, deal *entity.DealRecord) error
}
