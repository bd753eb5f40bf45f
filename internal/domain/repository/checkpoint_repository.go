package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// CheckpointRepository defines the interface for scheduler checkpoint
// persistence. Load returns nil when no checkpoint has been saved.
type CheckpointRepository interface {
	Load(ctx context.Context) (*entity.Checkpoint, error)
	Save(ctx context.Context, checkpoint *entity.Checkpoint) error
	Clear(ctx context.Context) error
}
