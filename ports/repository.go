package ports

import (
	"context"

	"wavetrack/domain/core"
	"wavetrack/domain/crosstab"
)

// CrosstabRepository persists assembled crosstabs for downstream renderers.
// The engine itself never touches storage; the demo binary and API wire an
// implementation in.
type CrosstabRepository interface {
	Save(ctx context.Context, ct *crosstab.Crosstab) error
	GetByRunID(ctx context.Context, runID core.RunID) (*crosstab.Crosstab, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// RunSummary is the listing row for persisted runs.
type RunSummary struct {
	RunID       core.RunID     `json:"run_id" db:"run_id"`
	GeneratedAt core.Timestamp `json:"generated_at" db:"generated_at"`
	WaveCount   int            `json:"wave_count" db:"wave_count"`
	RowCount    int            `json:"row_count" db:"row_count"`
}
