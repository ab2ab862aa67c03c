package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"wavetrack/domain/core"
	"wavetrack/domain/crosstab"
	"wavetrack/ports"
)

// crosstabRepository implements the CrosstabRepository interface. The
// assembled crosstab is stored as one JSONB document per run; the listing
// columns are denormalized for cheap run indexes.
type crosstabRepository struct {
	db *sqlx.DB
}

// NewCrosstabRepository creates a new crosstab repository
func NewCrosstabRepository(db *sqlx.DB) ports.CrosstabRepository {
	return &crosstabRepository{db: db}
}

// Save inserts an assembled crosstab, replacing any earlier document for
// the same run.
func (r *crosstabRepository) Save(ctx context.Context, ct *crosstab.Crosstab) error {
	doc, err := json.Marshal(ct)
	if err != nil {
		return fmt.Errorf("failed to marshal crosstab: %w", err)
	}

	query := `INSERT INTO crosstab_runs (
		run_id, generated_at, wave_count, row_count, document
	) VALUES (
		$1, $2, $3, $4, $5
	)
	ON CONFLICT (run_id) DO UPDATE SET
		generated_at = EXCLUDED.generated_at,
		wave_count = EXCLUDED.wave_count,
		row_count = EXCLUDED.row_count,
		document = EXCLUDED.document`

	_, err = r.db.ExecContext(ctx, query,
		ct.RunID, ct.GeneratedAt.Time(), len(ct.Waves), len(ct.Rows), doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save crosstab run %s: %w", ct.RunID, err)
	}
	return nil
}

// GetByRunID retrieves one assembled crosstab by its run id.
func (r *crosstabRepository) GetByRunID(ctx context.Context, runID core.RunID) (*crosstab.Crosstab, error) {
	query := `SELECT document FROM crosstab_runs WHERE run_id = $1`

	var doc []byte
	err := r.db.QueryRowContext(ctx, query, runID).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("crosstab run %s: %w", runID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get crosstab run %s: %w", runID, err)
	}

	var ct crosstab.Crosstab
	if err := json.Unmarshal(doc, &ct); err != nil {
		return nil, fmt.Errorf("failed to unmarshal crosstab run %s: %w", runID, err)
	}
	return &ct, nil
}

// ListRuns retrieves the most recent run summaries.
func (r *crosstabRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT run_id, generated_at, wave_count, row_count
	FROM crosstab_runs
	ORDER BY generated_at DESC
	LIMIT $1`

	var runs []ports.RunSummary
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list crosstab runs: %w", err)
	}
	return runs, nil
}
