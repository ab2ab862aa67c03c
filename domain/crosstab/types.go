package crosstab

import (
	"encoding/json"
	"math"
	"sort"

	"wavetrack/domain/core"
	"wavetrack/domain/metric"
)

// ============================================================================
// SIGNIFICANCE RESULTS
// ============================================================================

// SigCode is the tri-state direction signal for one pairwise comparison:
// -1 significant decrease, 0 no significant difference, +1 significant
// increase.
type SigCode int

const (
	SigDown SigCode = -1
	SigNone SigCode = 0
	SigUp   SigCode = 1
)

// GuardCode tags a pairwise computation that could not run. It is distinct
// from the undefined-value sentinel used for genuinely missing data, so
// "computation failed" and "input was legitimately missing" are never
// confused downstream.
type GuardCode string

const (
	GuardNone          GuardCode = ""
	GuardMissingWave   GuardCode = "MISSING_WAVE"
	GuardInsufficientN GuardCode = "INSUFFICIENT_N"
	GuardZeroVariance  GuardCode = "ZERO_VARIANCE"
	GuardUndefinedMean GuardCode = "UNDEFINED_MEAN"
	GuardBadProportion GuardCode = "BAD_PROPORTION"
	GuardUntestedType  GuardCode = "UNTESTED_TYPE"
)

// OK reports whether the computation ran.
func (g GuardCode) OK() bool { return g == GuardNone }

// SignificanceResult is the outcome of one two-sample comparison.
// Statistic and PValue are NaN when Guard is set; DF is populated only for
// the t-test.
type SignificanceResult struct {
	Statistic   float64
	DF          float64
	PValue      float64
	Significant bool
	Alpha       float64
	Code        SigCode
	Guard       GuardCode
}

// significanceResultJSON is the wire shape: the NaN sentinels of guarded
// comparisons render as null, since encoding/json rejects NaN and one
// guarded cell must not make the whole crosstab unserializable.
type significanceResultJSON struct {
	Statistic   *float64  `json:"statistic"`
	DF          float64   `json:"df,omitempty"`
	PValue      *float64  `json:"p_value"`
	Significant bool      `json:"significant"`
	Alpha       float64   `json:"alpha"`
	Code        SigCode   `json:"sig_code"`
	Guard       GuardCode `json:"guard,omitempty"`
}

func (r SignificanceResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(significanceResultJSON{
		Statistic:   nullableFloat(r.Statistic),
		DF:          r.DF,
		PValue:      nullableFloat(r.PValue),
		Significant: r.Significant,
		Alpha:       r.Alpha,
		Code:        r.Code,
		Guard:       r.Guard,
	})
}

func (r *SignificanceResult) UnmarshalJSON(data []byte) error {
	var wire significanceResultJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = SignificanceResult{
		Statistic:   floatOrNaN(wire.Statistic),
		DF:          wire.DF,
		PValue:      floatOrNaN(wire.PValue),
		Significant: wire.Significant,
		Alpha:       wire.Alpha,
		Code:        wire.Code,
		Guard:       wire.Guard,
	}
	return nil
}

func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func floatOrNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// ============================================================================
// ROWS AND CELLS
// ============================================================================

// SegmentCells holds one segment's wave-indexed cells for a metric row.
// A missing cell is an absent map key; values are never stored as NaN.
type SegmentCells struct {
	Values     map[core.WaveID]float64            `json:"values"`
	Ns         map[core.WaveID]float64            `json:"ns"`
	ChangePrev map[core.WaveID]float64            `json:"change_vs_previous"`
	ChangeBase map[core.WaveID]float64            `json:"change_vs_baseline"`
	SigPrev    map[core.WaveID]SignificanceResult `json:"sig_vs_previous"`
	SigBase    map[core.WaveID]SignificanceResult `json:"sig_vs_baseline"`
}

// NewSegmentCells allocates the cell maps sized for the wave count.
func NewSegmentCells(waves int) SegmentCells {
	return SegmentCells{
		Values:     make(map[core.WaveID]float64, waves),
		Ns:         make(map[core.WaveID]float64, waves),
		ChangePrev: make(map[core.WaveID]float64, waves),
		ChangeBase: make(map[core.WaveID]float64, waves),
		SigPrev:    make(map[core.WaveID]SignificanceResult, waves),
		SigBase:    make(map[core.WaveID]SignificanceResult, waves),
	}
}

// MetricRow is one output row: a (question, metric spec) pair crossed with
// every configured segment and the full wave sequence.
type MetricRow struct {
	Question     core.QuestionCode                 `json:"question"`
	Spec         metric.Spec                       `json:"spec"`
	Section      string                            `json:"section"`
	SortOrder    int                               `json:"sort_order"`
	QuestionType string                            `json:"question_type"`
	Segments     map[core.SegmentName]SegmentCells `json:"segments"`
}

// ============================================================================
// ASSEMBLED CROSSTAB (Sole downstream contract surface)
// ============================================================================

// Crosstab is the assembled multi-wave result structure handed to table and
// report renderers. This package has no knowledge of how it is displayed.
type Crosstab struct {
	RunID       core.RunID                  `json:"run_id"`
	GeneratedAt core.Timestamp              `json:"generated_at"`
	Alpha       float64                     `json:"alpha"`
	Waves       []core.WaveID               `json:"waves"`
	WaveLabels  map[core.WaveID]string      `json:"wave_labels"`
	Baseline    core.WaveID                 `json:"baseline"`
	Segments    []core.SegmentName          `json:"segments"`
	Sections    []string                    `json:"sections"`
	Rows        []MetricRow                 `json:"rows"`
	Skipped     map[core.QuestionCode]string `json:"skipped,omitempty"`
}

// SortRows orders rows by (section, explicit sort order), ties preserving
// input order.
func SortRows(rows []MetricRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Section != rows[j].Section {
			return rows[i].Section < rows[j].Section
		}
		return rows[i].SortOrder < rows[j].SortOrder
	})
}

// SectionList returns the distinct sections in row order.
func SectionList(rows []MetricRow) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, row := range rows {
		if !seen[row.Section] {
			seen[row.Section] = true
			out = append(out, row.Section)
		}
	}
	return out
}
