// Package trend turns pairs of per-wave result bundles into values, changes
// and significance flags. Everything here is pure and never panics: a cell
// that cannot be computed comes back undefined so the rest of the run keeps
// going.
package trend

import (
	"math"
	"strings"

	"wavetrack/domain/metric"
	"wavetrack/domain/wave"
)

// ExtractPrimaryMetric returns the one scalar a wave result is characterized
// by for top-line display: the mean for mean-shaped payloads, the NPS score,
// the first category or item share for the proportion shapes. It is total:
// an unavailable or nil result, a payload missing the expected field, or a
// payload whose shape contradicts the declared metric type all yield NaN,
// never an error. Shares come back on the 0-100 scale exactly as stored;
// this function never re-scales.
func ExtractPrimaryMetric(wr wave.Result, metricType metric.Type) float64 {
	if wr == nil || !wr.Available() {
		return math.NaN()
	}
	switch payload := wr.(type) {
	case *wave.MeanResult:
		if metricType.UsesMeansTest() && metricType != metric.TypeNPS {
			return payload.Mean
		}
	case *wave.NPSResult:
		if metricType == metric.TypeNPS {
			return payload.Score
		}
	case *wave.ProportionsResult:
		if metricType == metric.TypeProportions {
			return payload.Primary().Float()
		}
	case *wave.MultiMentionResult:
		if metricType == metric.TypeMultiMention {
			return payload.Primary().Float()
		}
	case *wave.CategoryMentionsResult:
		if metricType == metric.TypeCategoryMentions {
			return payload.Primary().Float()
		}
	}
	return math.NaN()
}

// ExtractMetricValue is the general form for questions tracking more than
// one metric spec: it resolves the spec's normalized name against the
// payload field it lives in. Category and item labels match after
// normalization, so labels with spaces or punctuation still resolve.
func ExtractMetricValue(wr wave.Result, spec metric.Spec) float64 {
	if wr == nil || !wr.Available() {
		return math.NaN()
	}
	if spec.Name == "primary" {
		return ExtractPrimaryMetric(wr, spec.Type)
	}

	switch payload := wr.(type) {
	case *wave.MeanResult:
		if spec.Name == "mean" {
			return payload.Mean
		}
		return payload.Score(spec.Name).Float()
	case *wave.NPSResult:
		switch spec.Name {
		case "nps", "mean":
			return payload.Score
		case "promoters":
			return payload.Promoters.Float()
		case "passives":
			return payload.Passives.Float()
		case "detractors":
			return payload.Detractors.Float()
		}
		return math.NaN()
	case *wave.ProportionsResult:
		return payload.Share(stripPrefix(spec.Name, "category_")).Float()
	case *wave.MultiMentionResult:
		return payload.Share(stripPrefix(spec.Name, "item_")).Float()
	case *wave.CategoryMentionsResult:
		return payload.Share(stripPrefix(spec.Name, "category_")).Float()
	}
	return math.NaN()
}

// stripPrefix removes the spec-kind prefix when present, leaving bare names
// to resolve as-is so "yes" and "category_yes" both work.
func stripPrefix(name, prefix string) string {
	return strings.TrimPrefix(name, prefix)
}
