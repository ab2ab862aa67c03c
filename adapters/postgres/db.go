package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// Connect opens and verifies a PostgreSQL connection.
func Connect(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the run storage table when absent. Runs are
// append-mostly documents, so the schema fits one statement.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS crosstab_runs (
			run_id TEXT PRIMARY KEY,
			generated_at TIMESTAMPTZ NOT NULL,
			wave_count INTEGER NOT NULL,
			row_count INTEGER NOT NULL,
			document JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create crosstab_runs table: %w", err)
	}
	return nil
}
