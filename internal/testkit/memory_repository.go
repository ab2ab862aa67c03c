package testkit

import (
	"context"
	"sort"
	"sync"

	"wavetrack/domain/core"
	"wavetrack/domain/crosstab"
	"wavetrack/ports"
)

// InMemoryCrosstabRepository is the storage stand-in for tests and runs
// without a database. Safe for concurrent use.
type InMemoryCrosstabRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]*crosstab.Crosstab
}

// NewInMemoryCrosstabRepository creates an empty in-memory repository.
func NewInMemoryCrosstabRepository() *InMemoryCrosstabRepository {
	return &InMemoryCrosstabRepository{runs: make(map[core.RunID]*crosstab.Crosstab)}
}

func (r *InMemoryCrosstabRepository) Save(ctx context.Context, ct *crosstab.Crosstab) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[ct.RunID] = ct
	return nil
}

func (r *InMemoryCrosstabRepository) GetByRunID(ctx context.Context, runID core.RunID) (*crosstab.Crosstab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.runs[runID]
	if !ok {
		return nil, core.NewNotFoundError("crosstab run", string(runID))
	}
	return ct, nil
}

func (r *InMemoryCrosstabRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]ports.RunSummary, 0, len(r.runs))
	for _, ct := range r.runs {
		summaries = append(summaries, ports.RunSummary{
			RunID:       ct.RunID,
			GeneratedAt: ct.GeneratedAt,
			WaveCount:   len(ct.Waves),
			RowCount:    len(ct.Rows),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].GeneratedAt.Time().After(summaries[j].GeneratedAt.Time())
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

var _ ports.CrosstabRepository = (*InMemoryCrosstabRepository)(nil)
