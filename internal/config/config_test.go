package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavetrack/domain/core"
	"wavetrack/internal/errors"
)

func validConfig() *RunConfig {
	return &RunConfig{
		Waves: []WaveSpec{
			{ID: "2025q4", Label: "Q4 2025"},
			{ID: "2026q1", Label: "Q1 2026"},
		},
		Questions: []TrackedQuestion{
			{Code: "SAT", QuestionType: "rating", Section: "Satisfaction"},
		},
		Segments: []core.SegmentName{"Total"},
	}
}

func TestValidateRefusals(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*RunConfig)
		wantCode string
	}{
		{
			name:     "no waves",
			mutate:   func(c *RunConfig) { c.Waves = nil },
			wantCode: errors.CodeNoWaves,
		},
		{
			name: "empty wave id",
			mutate: func(c *RunConfig) {
				c.Waves = append(c.Waves, WaveSpec{ID: ""})
			},
			wantCode: errors.CodeInvalidConfig,
		},
		{
			name: "duplicate wave id",
			mutate: func(c *RunConfig) {
				c.Waves = append(c.Waves, WaveSpec{ID: "2025q4"})
			},
			wantCode: errors.CodeDuplicateWave,
		},
		{
			name:     "baseline not in wave list",
			mutate:   func(c *RunConfig) { c.Baseline = "2019q1" },
			wantCode: errors.CodeBadBaseline,
		},
		{
			name:     "alpha at one",
			mutate:   func(c *RunConfig) { c.Alpha = 1 },
			wantCode: errors.CodeBadAlpha,
		},
		{
			name:     "negative alpha",
			mutate:   func(c *RunConfig) { c.Alpha = -0.05 },
			wantCode: errors.CodeBadAlpha,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Baseline = "2026q1"
	cfg.Alpha = 0.1
	require.NoError(t, cfg.Validate())
}

func TestResolvedDefaults(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, DefaultAlpha, cfg.ResolvedAlpha())
	assert.Equal(t, core.WaveID("2025q4"), cfg.ResolvedBaseline(), "first wave is the default baseline")

	cfg.Alpha = 0.01
	cfg.Baseline = "2026q1"
	assert.Equal(t, 0.01, cfg.ResolvedAlpha())
	assert.Equal(t, core.WaveID("2026q1"), cfg.ResolvedBaseline())
}

func TestSpecsForFallbackChain(t *testing.T) {
	cfg := validConfig()

	// Explicit specs win.
	q := TrackedQuestion{Code: "SAT", Specs: []string{"mean", "top2_box"}}
	assert.Equal(t, []string{"mean", "top2_box"}, cfg.SpecsFor(q, "rating"))

	// Run-level defaults override the built-ins.
	cfg.DefaultSpecs = map[string][]string{"rating": {"mean", "top3_box"}}
	assert.Equal(t, []string{"mean", "top3_box"}, cfg.SpecsFor(TrackedQuestion{}, "rating"))

	// Built-in defaults per question type.
	cfg.DefaultSpecs = nil
	assert.Equal(t, []string{"nps"}, cfg.SpecsFor(TrackedQuestion{}, "nps"))
	assert.Equal(t, []string{"primary"}, cfg.SpecsFor(TrackedQuestion{}, "single_choice"))
	assert.Nil(t, cfg.SpecsFor(TrackedQuestion{}, "ranking"), "untrended types default to nothing")
}

func TestApplyEnvOverlay(t *testing.T) {
	t.Setenv("TRACKING_ALPHA", "0.1")
	t.Setenv("TRACKING_WORKERS", "8")
	t.Setenv("TRACKING_BASELINE", "2026q1")

	cfg := validConfig()
	cfg.ApplyEnv()
	assert.Equal(t, 0.1, cfg.Alpha)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, core.WaveID("2026q1"), cfg.Baseline)

	// Explicit configuration is never overwritten by the environment.
	cfg = validConfig()
	cfg.Alpha = 0.01
	cfg.Workers = 2
	cfg.Baseline = "2025q4"
	cfg.ApplyEnv()
	assert.Equal(t, 0.01, cfg.Alpha)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, core.WaveID("2025q4"), cfg.Baseline)
}
