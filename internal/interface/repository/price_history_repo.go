package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
)

const priceHistoryMigration = `
CREATE TABLE IF NOT EXISTS price_history (
	history_key       TEXT PRIMARY KEY,
	origin            TEXT NOT NULL,
	destination       TEXT NOT NULL,
	cabin             TEXT NOT NULL,
	departure_date    TEXT NOT NULL,
	return_date       TEXT NOT NULL DEFAULT '',
	lowest_price      REAL NOT NULL,
	most_recent_price REAL NOT NULL,
	most_recent_at    DATETIME NOT NULL,
	observation_count INTEGER NOT NULL,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);
`

// SQLitePriceHistoryRepository implements PriceHistoryRepository on a sqlite
// file. The full table is loaded into memory at construction and every
// mutation is written through, so a crash loses at most the in-flight
// update, never prior history. The backing file is owned by a single
// scheduler process; multi-process access is not supported.
type SQLitePriceHistoryRepository struct {
	db      *sql.DB
	path    string
	records map[string]*entity.PriceHistoryRecord
	logger  logger.Logger
}

// NewSQLitePriceHistoryRepository migrates the price_history table and loads
// it fully into memory. Any failure surfaces as *entity.HistoryLoadError so
// the process can refuse to start rather than treat every price as a deal.
func NewSQLitePriceHistoryRepository(ctx context.Context, db *sql.DB, path string, logger logger.Logger) (repository.PriceHistoryRepository, error) {
	if _, err := db.ExecContext(ctx, priceHistoryMigration); err != nil {
		return nil, &entity.HistoryLoadError{Path: path, Err: err}
	}

	rows, err := db.QueryContext(ctx, `
		SELECT history_key, origin, destination, cabin, departure_date, return_date,
		       lowest_price, most_recent_price, most_recent_at, observation_count,
		       created_at, updated_at
		FROM price_history`)
	if err != nil {
		return nil, &entity.HistoryLoadError{Path: path, Err: err}
	}
	defer rows.Close()

	records := make(map[string]*entity.PriceHistoryRecord)
	for rows.Next() {
		var key string
		var record entity.PriceHistoryRecord
		err := rows.Scan(
			&key,
			&record.Origin,
			&record.Destination,
			&record.Cabin,
			&record.DepartureDate,
			&record.ReturnDate,
			&record.LowestPrice,
			&record.MostRecentPrice,
			&record.MostRecentAt,
			&record.ObservationCount,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, &entity.HistoryLoadError{Path: path, Err: err}
		}
		records[key] = &record
	}
	if err := rows.Err(); err != nil {
		return nil, &entity.HistoryLoadError{Path: path, Err: err}
	}

	logger.Info("Price history loaded", "records", len(records), "path", path)

	return &SQLitePriceHistoryRepository{
		db:      db,
		path:    path,
		records: records,
		logger:  logger,
	}, nil
}

// Get returns the history record for a key, or nil when none exists
func (r *SQLitePriceHistoryRepository) Get(ctx context.Context, route entity.RouteKey, dates entity.DatePairKey) (*entity.PriceHistoryRecord, error) {
	record, ok := r.records[entity.HistoryKey(route, dates)]
	if !ok {
		return nil, nil
	}

	snapshot := *record
	return &snapshot, nil
}

// Record folds a new price observation into the history for a key and
// writes the updated record through to the backing file. Re-recording an
// identical price never raises the stored lowest.
func (r *SQLitePriceHistoryRepository) Record(ctx context.Context, route entity.RouteKey, dates entity.DatePairKey, price float64, observedAt time.Time) (*entity.PriceHistoryRecord, error) {
	key := entity.HistoryKey(route, dates)
	now := time.Now().UTC()

	record, ok := r.records[key]
	if !ok {
		record = &entity.PriceHistoryRecord{
			Origin:           route.Origin,
			Destination:      route.Destination,
			Cabin:            route.Cabin,
			DepartureDate:    dates.Departure,
			ReturnDate:       dates.Return,
			LowestPrice:      price,
			MostRecentPrice:  price,
			MostRecentAt:     observedAt,
			ObservationCount: 1,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		r.records[key] = record
	} else {
		if price < record.LowestPrice {
			record.LowestPrice = price
		}
		record.MostRecentPrice = price
		record.MostRecentAt = observedAt
		record.ObservationCount++
		record.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_history (
			history_key, origin, destination, cabin, departure_date, return_date,
			lowest_price, most_recent_price, most_recent_at, observation_count,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(history_key) DO UPDATE SET
			lowest_price      = excluded.lowest_price,
			most_recent_price = excluded.most_recent_price,
			most_recent_at    = excluded.most_recent_at,
			observation_count = excluded.observation_count,
			updated_at        = excluded.updated_at`,
		key,
		record.Origin,
		record.Destination,
		string(record.Cabin),
		record.DepartureDate,
		record.ReturnDate,
		record.LowestPrice,
		record.MostRecentPrice,
		record.MostRecentAt,
		record.ObservationCount,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to persist price history for %s: %w", key, err)
	}

	snapshot := *record
	return &snapshot, nil
}
