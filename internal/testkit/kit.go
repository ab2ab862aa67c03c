// Package testkit generates deterministic synthetic tracking studies for
// tests and the demo binary: a fixed question battery fielded over several
// waves, with gentle drift so trend columns have something to find.
package testkit

import (
	"fmt"
	"math/rand"

	"wavetrack/domain/core"
	"wavetrack/internal/config"
	"wavetrack/internal/wavecalc"
)

// StudyConfig configures the synthetic study generator.
type StudyConfig struct {
	WaveCount       int `json:"wave_count"`
	RespondentCount int `json:"respondent_count"`
	// DriftPerWave shifts the rating and NPS centers upward each wave so
	// later waves test significantly above the baseline.
	DriftPerWave float64 `json:"drift_per_wave"`
	// WeightSpread widens the synthetic survey weights around 1.0; zero
	// produces an unweighted study.
	WeightSpread float64 `json:"weight_spread"`
	Seed         int64   `json:"seed"`
}

// DefaultStudyConfig returns the defaults used by the demo binary.
func DefaultStudyConfig() StudyConfig {
	return StudyConfig{
		WaveCount:       4,
		RespondentCount: 600,
		DriftPerWave:    0.12,
		WeightSpread:    0.3,
		Seed:            42,
	}
}

// Segments of the synthetic study. Segment membership is assigned per
// respondent and held stable across waves.
var segments = []core.SegmentName{"Total", "18-34", "35+"}

// GenerateStudy builds the synthetic dataset and the matching run
// configuration. The same seed always yields the same study.
func GenerateStudy(cfg StudyConfig) (*wavecalc.Study, *config.RunConfig) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	waves := make([]config.WaveSpec, cfg.WaveCount)
	for i := range waves {
		quarter := i%4 + 1
		year := 2025 + (i+3)/4
		waves[i] = config.WaveSpec{
			ID:    core.WaveID(fmt.Sprintf("%dq%d", year, quarter)),
			Label: fmt.Sprintf("Q%d %d", quarter, year),
		}
	}

	study := &wavecalc.Study{Questions: map[core.QuestionCode]*wavecalc.QuestionData{
		"SAT": {
			Type: "rating",
			Categories: map[float64]string{
				4: "Satisfied",
				5: "Very Satisfied",
			},
			Derive: []string{"top2_box"},
			Cells:  wavecalc.CellMap{},
		},
		"REC": {
			Type:  "nps",
			Cells: wavecalc.CellMap{},
		},
		"AWARE": {
			Type: "single_choice",
			Categories: map[float64]string{
				1: "Aware",
				2: "Not Aware",
			},
			Cells: wavecalc.CellMap{},
		},
		"SRC": {
			Type:  "multi_mention",
			Cells: wavecalc.CellMap{},
		},
	}}

	for wi, w := range waves {
		drift := float64(wi) * cfg.DriftPerWave
		for _, seg := range segments {
			n := cfg.RespondentCount
			if seg != "Total" {
				n = cfg.RespondentCount / 2
			}
			weights := drawWeights(rng, n, cfg.WeightSpread)

			study.Questions["SAT"].Cells.Set(w.ID, seg, &wavecalc.CellData{
				Values:  drawScale(rng, n, 3.6+drift, 1.0, 1, 5),
				Weights: weights,
			})
			study.Questions["REC"].Cells.Set(w.ID, seg, &wavecalc.CellData{
				Values:  drawScale(rng, n, 7.4+2*drift, 2.2, 0, 10),
				Weights: weights,
			})
			study.Questions["AWARE"].Cells.Set(w.ID, seg, &wavecalc.CellData{
				Values:  drawBinaryCode(rng, n, 0.55+drift/10, 1, 2),
				Weights: weights,
			})
			study.Questions["SRC"].Cells.Set(w.ID, seg, &wavecalc.CellData{
				Weights: weights,
				Items: map[string][]float64{
					"Search":      drawIndicator(rng, n, 0.62+drift/10),
					"Friends":     drawIndicator(rng, n, 0.34),
					"Advertising": drawIndicator(rng, n, 0.18+drift/20),
				},
				ItemOrder: []string{"Search", "Friends", "Advertising"},
			})
		}
	}

	runCfg := &config.RunConfig{
		Waves: waves,
		Questions: []config.TrackedQuestion{
			{Code: "SAT", QuestionType: "rating", Section: "Satisfaction", SortOrder: 1,
				Specs: []string{"mean", "top2_box"}, Label: "Overall satisfaction"},
			{Code: "REC", QuestionType: "nps", Section: "Satisfaction", SortOrder: 2,
				Label: "Likelihood to recommend"},
			{Code: "AWARE", QuestionType: "single_choice", Section: "Brand", SortOrder: 1,
				Specs: []string{"category:Aware"}, Label: "Brand awareness"},
			{Code: "SRC", QuestionType: "multi_mention", Section: "Brand", SortOrder: 2,
				Specs: []string{"item:Search", "item:Friends", "item:Advertising"}},
		},
		Segments: segments,
	}
	return study, runCfg
}

// drawScale samples a clamped, discretized normal onto an integer scale.
func drawScale(rng *rand.Rand, n int, mean, sd, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		v := mean + sd*rng.NormFloat64()
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		out[i] = float64(int(v + 0.5))
	}
	return out
}

// drawBinaryCode samples code a with probability p, else code b.
func drawBinaryCode(rng *rand.Rand, n int, p, a, b float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if rng.Float64() < p {
			out[i] = a
		} else {
			out[i] = b
		}
	}
	return out
}

// drawIndicator samples a 0/1 mention vector.
func drawIndicator(rng *rand.Rand, n int, p float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if rng.Float64() < p {
			out[i] = 1
		}
	}
	return out
}

// drawWeights samples survey weights around 1.0. A zero spread yields unit
// weights.
func drawWeights(rng *rand.Rand, n int, spread float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		w := 1 + spread*(rng.Float64()*2-1)
		if w < 0.1 {
			w = 0.1
		}
		out[i] = w
	}
	return out
}
