package ports

import (
	"wavetrack/domain/core"
	"wavetrack/domain/wave"
)

// WaveCalculator is the layer below this engine: it computes one WaveResult
// per (question, wave, segment) from respondent-level data that never enters
// this core. internal/wavecalc is the in-memory implementation used by tests
// and the demo binary.
type WaveCalculator interface {
	// Calculate returns the computed-statistics bundle for one cell. A
	// question not fielded in the wave returns an Unavailable result, not
	// an error.
	Calculate(question core.QuestionCode, waveID core.WaveID, segment core.SegmentName) (wave.Result, error)
}

// TrendResults is the per-wave result set the crosstab builder consumes,
// keyed question → segment → wave. Produced by running a WaveCalculator
// over every cell up front.
type TrendResults map[core.QuestionCode]map[core.SegmentName]map[core.WaveID]wave.Result

// Lookup returns the cell's result, nil when any level is absent.
func (t TrendResults) Lookup(question core.QuestionCode, segment core.SegmentName, waveID core.WaveID) wave.Result {
	segments, ok := t[question]
	if !ok {
		return nil
	}
	waves, ok := segments[segment]
	if !ok {
		return nil
	}
	return waves[waveID]
}

// Has reports whether the question appears in the result set at all.
func (t TrendResults) Has(question core.QuestionCode) bool {
	_, ok := t[question]
	return ok
}
