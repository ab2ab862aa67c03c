package config

import (
	"os"
	"strconv"

	"wavetrack/domain/core"
	"wavetrack/internal/errors"
)

// WaveSpec is one fielding round in chronological order.
type WaveSpec struct {
	ID    core.WaveID `json:"id"`
	Label string      `json:"label"`
}

// TrackedQuestion configures one question in the crosstab.
type TrackedQuestion struct {
	Code         core.QuestionCode `json:"code"`
	QuestionType string            `json:"question_type"`
	Section      string            `json:"section"`
	SortOrder    int               `json:"sort_order"`
	Specs        []string          `json:"specs,omitempty"` // falls back to DefaultSpecs by question type
	Label        string            `json:"label,omitempty"`
}

// RunConfig is the complete configuration for one tracking run. It is
// supplied by the configuration loader (outside this engine); this package
// only validates it and resolves the run-scoped defaults.
type RunConfig struct {
	Waves        []WaveSpec          `json:"waves"`
	Questions    []TrackedQuestion   `json:"questions"`
	Segments     []core.SegmentName  `json:"segments"`
	Baseline     core.WaveID         `json:"baseline,omitempty"` // empty: first wave
	Alpha        float64             `json:"alpha,omitempty"`    // zero: DefaultAlpha
	DefaultSpecs map[string][]string `json:"default_specs,omitempty"`
	Workers      int                 `json:"workers,omitempty"` // <=1: sequential
}

// DefaultAlpha is the significance level used when none is configured.
const DefaultAlpha = 0.05

// defaultSpecsByType is the fallback metric-spec list per normalized
// question type when a tracked question configures none.
var defaultSpecsByType = map[string][]string{
	"rating":             {"mean"},
	"rating_enhanced":    {"mean"},
	"composite":          {"mean"},
	"composite_enhanced": {"mean"},
	"nps":                {"nps"},
	"single_choice":      {"primary"},
	"multi_mention":      {"primary"},
	"category_mentions":  {"primary"},
}

// Validate checks the refusal-class invariants: these make the whole run
// meaningless, so they are rejected up front with structured codes rather
// than degraded per cell.
func (c *RunConfig) Validate() error {
	if len(c.Waves) == 0 {
		return errors.New(errors.CodeNoWaves, "at least one wave is required")
	}
	seen := make(map[core.WaveID]bool, len(c.Waves))
	for _, w := range c.Waves {
		if w.ID == "" {
			return errors.New(errors.CodeInvalidConfig, "wave with empty id")
		}
		if seen[w.ID] {
			return errors.Newf(errors.CodeDuplicateWave, "duplicate wave id %q", w.ID)
		}
		seen[w.ID] = true
	}
	if c.Baseline != "" && !seen[c.Baseline] {
		return errors.Newf(errors.CodeBadBaseline, "baseline wave %q not in wave list", c.Baseline)
	}
	if c.Alpha != 0 && (c.Alpha <= 0 || c.Alpha >= 1) {
		return errors.Newf(errors.CodeBadAlpha, "alpha %v outside (0, 1)", c.Alpha)
	}
	return nil
}

// ResolvedAlpha returns the configured significance level or the default.
func (c *RunConfig) ResolvedAlpha() float64 {
	if c.Alpha > 0 && c.Alpha < 1 {
		return c.Alpha
	}
	return DefaultAlpha
}

// ResolvedBaseline resolves the baseline wave exactly once per run: the
// explicit configuration value, else the first wave in chronological order.
func (c *RunConfig) ResolvedBaseline() core.WaveID {
	if c.Baseline != "" {
		return c.Baseline
	}
	if len(c.Waves) > 0 {
		return c.Waves[0].ID
	}
	return ""
}

// SpecsFor returns the configured spec strings for a question, falling back
// to the per-question-type defaults (run-level overrides first).
func (c *RunConfig) SpecsFor(q TrackedQuestion, normalizedType string) []string {
	if len(q.Specs) > 0 {
		return q.Specs
	}
	if specs, ok := c.DefaultSpecs[normalizedType]; ok {
		return specs
	}
	return defaultSpecsByType[normalizedType]
}

// ApplyEnv overlays run-tuning knobs from the environment, mirroring the
// loader used by the demo binary. Unparseable values keep the defaults.
func (c *RunConfig) ApplyEnv() {
	if c.Alpha == 0 {
		c.Alpha = getEnvFloatOrDefault("TRACKING_ALPHA", 0)
	}
	if c.Workers == 0 {
		c.Workers = getEnvIntOrDefault("TRACKING_WORKERS", 0)
	}
	if c.Baseline == "" {
		if baseline := os.Getenv("TRACKING_BASELINE"); baseline != "" {
			c.Baseline = core.WaveID(baseline)
		}
	}
}

// Helper functions for environment variable parsing
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
