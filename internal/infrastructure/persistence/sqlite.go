package persistence

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"farewatch-service/internal/domain/entity"
)

// NewSQLiteDB opens the durable file backing the price history and the
// scheduler checkpoint, configuring WAL mode. A file that cannot be opened
// or is not a sqlite database surfaces as *entity.HistoryLoadError.
func NewSQLiteDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &entity.HistoryLoadError{Path: path, Err: err}
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, &entity.HistoryLoadError{Path: path, Err: err}
		}
	}

	return db, nil
}
