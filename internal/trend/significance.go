package trend

import (
	"math"

	"wavetrack/domain/crosstab"
	"wavetrack/domain/metric"
	"wavetrack/domain/wave"
	"wavetrack/internal/stats"
)

// PairwiseSignificance tests one wave-over-wave comparison for one tracked
// metric, dispatching by metric type: the proportion z-test for the share
// shapes (converting the stored 0-100 values to 0-1 at the call), the
// pooled t-test for the mean shapes and NPS. Sample sizes are the
// design-effect-adjusted effective n, falling back to the unweighted count.
//
// The never-raise contract callers depend on: any guard failure (a wave
// unavailable on either side, nil input, undersized n, undefined mean or sd,
// zero standard error) yields sig code 0, NaN p-value and the guard code.
func PairwiseSignificance(from, to wave.Result, spec metric.Spec, alpha float64) crosstab.SignificanceResult {
	if from == nil || to == nil || !from.Available() || !to.Available() {
		return crosstab.SignificanceResult{
			Statistic: math.NaN(),
			PValue:    math.NaN(),
			Alpha:     alpha,
			Guard:     crosstab.GuardMissingWave,
		}
	}

	var res crosstab.SignificanceResult
	switch {
	case spec.Type.UsesProportionTest():
		p1 := ExtractMetricValue(from, spec)
		p2 := ExtractMetricValue(to, spec)
		// The one place the 0-100 display scale becomes a probability.
		res = stats.ZTestProportions(p1/100, testN(from), p2/100, testN(to), alpha)
	case spec.Type.UsesMeansTest():
		mean1, sd1, ok1 := meanAndSD(from)
		mean2, sd2, ok2 := meanAndSD(to)
		if !ok1 || !ok2 {
			return crosstab.SignificanceResult{
				Statistic: math.NaN(),
				PValue:    math.NaN(),
				Alpha:     alpha,
				Guard:     crosstab.GuardUndefinedMean,
			}
		}
		res = stats.TTestMeans(mean1, sd1, testN(from), mean2, sd2, testN(to), alpha)
	default:
		return crosstab.SignificanceResult{
			Statistic: math.NaN(),
			PValue:    math.NaN(),
			Alpha:     alpha,
			Guard:     crosstab.GuardUntestedType,
		}
	}

	if res.Significant {
		if res.Statistic > 0 {
			res.Code = crosstab.SigUp
		} else {
			res.Code = crosstab.SigDown
		}
	}
	return res
}

// Change returns the signed difference to-from, undefined when either side
// is.
func Change(fromValue, toValue float64) float64 {
	if math.IsNaN(fromValue) || math.IsNaN(toValue) {
		return math.NaN()
	}
	return toValue - fromValue
}

// testN is the sample size significance tests run on.
func testN(wr wave.Result) float64 {
	if wr.EffectiveN() > 0 {
		return wr.EffectiveN()
	}
	return float64(wr.UnweightedN())
}

// meanAndSD pulls the tested mean and dispersion out of a mean-shaped
// payload. NPS scores are tested as means of the -100/0/+100 recode, whose
// sd the per-wave calculator stored alongside the score.
func meanAndSD(wr wave.Result) (mean, sd float64, ok bool) {
	switch payload := wr.(type) {
	case *wave.MeanResult:
		return payload.Mean, payload.SD, true
	case *wave.NPSResult:
		return payload.Score, payload.SD, true
	}
	return 0, 0, false
}
