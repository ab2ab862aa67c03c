package wave

import (
	"math"

	"wavetrack/domain/core"
	"wavetrack/domain/metric"
)

// ============================================================================
// WAVE RESULTS (Immutable per-(question, wave, segment) statistic bundles)
// ============================================================================

// Result is the computed-statistics bundle one per-wave calculator produced
// for a single (question, wave, segment) cell. Implementations are variant
// types, one per metric shape. A Result is immutable once produced.
type Result interface {
	// Available reports whether the question was fielded and produced data
	// in this wave.
	Available() bool
	// UnweightedN is the raw respondent count behind the bundle.
	UnweightedN() int
	// WeightedN is the sum of survey weights behind the bundle.
	WeightedN() float64
	// EffectiveN is the design-effect-adjusted sample size used by
	// significance tests. Zero means "not adjusted"; callers fall back to
	// the unweighted count.
	EffectiveN() float64
	// MetricType identifies the payload shape.
	MetricType() metric.Type
}

// Counts carries the sample-size fields shared by every variant.
type Counts struct {
	Unweighted int     `json:"unweighted_n"`
	Weighted   float64 `json:"weighted_n"`
	Effective  float64 `json:"effective_n"`
}

func (c Counts) UnweightedN() int    { return c.Unweighted }
func (c Counts) WeightedN() float64  { return c.Weighted }
func (c Counts) EffectiveN() float64 { return c.Effective }

// TestN is the sample size significance tests should use: effective n when
// the design effect was applied, otherwise the unweighted count.
func (c Counts) TestN() float64 {
	if c.Effective > 0 {
		return c.Effective
	}
	return float64(c.Unweighted)
}

// MeanResult is the payload for mean-bearing questions (ratings, composites).
// Scores holds derived named shares on the 0-100 scale: top/bottom boxes,
// named boxes, custom ranges.
type MeanResult struct {
	Counts
	Mean   float64                 `json:"mean"`
	SD     float64                 `json:"sd"`
	Type   metric.Type             `json:"metric_type"`
	Scores map[string]core.Percent `json:"scores,omitempty"`
}

func (r *MeanResult) Available() bool         { return r != nil && r.Unweighted > 0 }
func (r *MeanResult) MetricType() metric.Type { return r.Type }

// Score resolves a named derived share, undefined when absent.
func (r *MeanResult) Score(name string) core.Percent {
	if r == nil || r.Scores == nil {
		return core.UndefinedPercent()
	}
	if v, ok := r.Scores[core.NormalizeKey(name)]; ok {
		return v
	}
	return core.UndefinedPercent()
}

// NPSResult is the payload for net-promoter questions. Score is on the
// -100..+100 scale; SD is the sample standard deviation of the -100/0/+100
// recode, which the t-test uses.
type NPSResult struct {
	Counts
	Score      float64      `json:"score"`
	SD         float64      `json:"sd"`
	Promoters  core.Percent `json:"promoters"`
	Passives   core.Percent `json:"passives"`
	Detractors core.Percent `json:"detractors"`
}

func (r *NPSResult) Available() bool         { return r != nil && r.Unweighted > 0 }
func (r *NPSResult) MetricType() metric.Type { return metric.TypeNPS }

// ProportionsResult is the payload for single-choice questions: one share
// per category on the 0-100 scale. Categories preserves the ingestion order
// so "first category" is well defined.
type ProportionsResult struct {
	Counts
	Categories []string                `json:"categories"`
	Shares     map[string]core.Percent `json:"shares"`
}

func (r *ProportionsResult) Available() bool         { return r != nil && r.Unweighted > 0 }
func (r *ProportionsResult) MetricType() metric.Type { return metric.TypeProportions }

// Share resolves a category's share by normalized label, undefined when the
// category was never observed.
func (r *ProportionsResult) Share(label string) core.Percent {
	if r == nil {
		return core.UndefinedPercent()
	}
	return lookupShare(r.Shares, label)
}

// Primary returns the first category's share, the top-line value for
// single-choice questions.
func (r *ProportionsResult) Primary() core.Percent {
	if r == nil || len(r.Categories) == 0 {
		return core.UndefinedPercent()
	}
	return r.Share(r.Categories[0])
}

// MultiMentionResult is the payload for multi-select questions: one share
// per item; shares do not sum to 100.
type MultiMentionResult struct {
	Counts
	Items  []string                `json:"items"`
	Shares map[string]core.Percent `json:"shares"`
}

func (r *MultiMentionResult) Available() bool         { return r != nil && r.Unweighted > 0 }
func (r *MultiMentionResult) MetricType() metric.Type { return metric.TypeMultiMention }

func (r *MultiMentionResult) Share(label string) core.Percent {
	if r == nil {
		return core.UndefinedPercent()
	}
	return lookupShare(r.Shares, label)
}

func (r *MultiMentionResult) Primary() core.Percent {
	if r == nil || len(r.Items) == 0 {
		return core.UndefinedPercent()
	}
	return r.Share(r.Items[0])
}

// CategoryMentionsResult is the payload for coded open-end mention questions.
type CategoryMentionsResult struct {
	Counts
	Categories []string                `json:"categories"`
	Shares     map[string]core.Percent `json:"shares"`
}

func (r *CategoryMentionsResult) Available() bool         { return r != nil && r.Unweighted > 0 }
func (r *CategoryMentionsResult) MetricType() metric.Type { return metric.TypeCategoryMentions }

func (r *CategoryMentionsResult) Share(label string) core.Percent {
	if r == nil {
		return core.UndefinedPercent()
	}
	return lookupShare(r.Shares, label)
}

func (r *CategoryMentionsResult) Primary() core.Percent {
	if r == nil || len(r.Categories) == 0 {
		return core.UndefinedPercent()
	}
	return r.Share(r.Categories[0])
}

// Unavailable marks a (question, wave, segment) cell where the question was
// not fielded. Extraction yields undefined values; significance yields the
// missing-wave guard.
type Unavailable struct {
	Type metric.Type
}

func (r *Unavailable) Available() bool         { return false }
func (r *Unavailable) UnweightedN() int        { return 0 }
func (r *Unavailable) WeightedN() float64      { return 0 }
func (r *Unavailable) EffectiveN() float64     { return 0 }
func (r *Unavailable) MetricType() metric.Type { return r.Type }

// lookupShare is the shared map lookup with label normalization.
func lookupShare(shares map[string]core.Percent, label string) core.Percent {
	if v, ok := shares[core.NormalizeKey(label)]; ok {
		return v
	}
	return core.UndefinedPercent()
}

// ============================================================================
// INGESTION ADAPTER
// ============================================================================

// AdaptShares folds the two historical upstream shapes for proportion data
// -- a plural category→share map, or a single scalar share -- into the one
// canonical map keyed by normalized label. This is the only place the
// singular fallback exists; the engine never re-checks field shapes.
// NewProportionsResult builds the proportions payload through AdaptShares,
// so every producer - in-process calculators and externally supplied
// bundles alike - enters through the one adapter.
func NewProportionsResult(c Counts, order []string, shares map[string]core.Percent, scalar *core.Percent) *ProportionsResult {
	categories, adapted := AdaptShares(order, shares, scalar)
	return &ProportionsResult{Counts: c, Categories: categories, Shares: adapted}
}

// NewCategoryMentionsResult is the coded-mention counterpart of
// NewProportionsResult.
func NewCategoryMentionsResult(c Counts, order []string, shares map[string]core.Percent, scalar *core.Percent) *CategoryMentionsResult {
	categories, adapted := AdaptShares(order, shares, scalar)
	return &CategoryMentionsResult{Counts: c, Categories: categories, Shares: adapted}
}

func AdaptShares(order []string, shares map[string]core.Percent, scalar *core.Percent) ([]string, map[string]core.Percent) {
	if len(shares) > 0 {
		out := make(map[string]core.Percent, len(shares))
		keys := make([]string, 0, len(order))
		seen := make(map[string]bool, len(order))
		for label, share := range shares {
			out[core.NormalizeKey(label)] = share
		}
		for _, label := range order {
			key := core.NormalizeKey(label)
			if _, ok := out[key]; ok && !seen[key] {
				keys = append(keys, label)
				seen[key] = true
			}
		}
		return keys, out
	}
	if scalar != nil && !math.IsNaN(scalar.Float()) {
		return []string{"proportion"}, map[string]core.Percent{"proportion": *scalar}
	}
	return nil, nil
}
