package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
)

const checkpointMigration = `
CREATE TABLE IF NOT EXISTS scheduler_checkpoint (
	id                INTEGER PRIMARY KEY CHECK (id = 1),
	matrix_fingerprint TEXT NOT NULL,
	next_index        INTEGER NOT NULL,
	cycle_started_at  DATETIME NOT NULL
);
`

// SQLiteCheckpointRepository persists the scheduler's single-row progress
// marker in the same sqlite file as the price history.
type SQLiteCheckpointRepository struct {
	db *sql.DB
}

// NewSQLiteCheckpointRepository creates a new checkpoint repository,
// migrating its table.
func NewSQLiteCheckpointRepository(ctx context.Context, db *sql.DB) (repository.CheckpointRepository, error) {
	if _, err := db.ExecContext(ctx, checkpointMigration); err != nil {
		return nil, fmt.Errorf("failed to migrate scheduler_checkpoint: %w", err)
	}

	return &SQLiteCheckpointRepository{db: db}, nil
}

// Load returns the saved checkpoint, or nil when none exists
func (r *SQLiteCheckpointRepository) Load(ctx context.Context) (*entity.Checkpoint, error) {
	var checkpoint entity.Checkpoint
	err := r.db.QueryRowContext(ctx, `
		SELECT matrix_fingerprint, next_index, cycle_started_at
		FROM scheduler_checkpoint WHERE id = 1`).
		Scan(&checkpoint.MatrixFingerprint, &checkpoint.NextIndex, &checkpoint.CycleStartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler checkpoint: %w", err)
	}

	return &checkpoint, nil
}

// Save overwrites the checkpoint
func (r *SQLiteCheckpointRepository) Save(ctx context.Context, checkpoint *entity.Checkpoint) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduler_checkpoint (id, matrix_fingerprint, next_index, cycle_started_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			matrix_fingerprint = excluded.matrix_fingerprint,
			next_index         = excluded.next_index,
			cycle_started_at   = excluded.cycle_started_at`,
		checkpoint.MatrixFingerprint,
		checkpoint.NextIndex,
		checkpoint.CycleStartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scheduler checkpoint: %w", err)
	}
	return nil
}

// Clear removes the checkpoint after a completed cycle
func (r *SQLiteCheckpointRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scheduler_checkpoint WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear scheduler checkpoint: %w", err)
	}
	return nil
}
