package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// DealRecordRepository defines the interface for archiving emitted deals
type DealRecordRepository interface {
	Save(ctx context.Context, deal *entity.DealRecord) error
}
