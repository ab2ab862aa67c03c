// Package stats holds the closed-form statistical primitives behind the
// tracking engine. Every function is total over its documented input domain:
// malformed inputs degrade to a guarded result, never a panic, because a
// single bad cell must not kill a multi-hour batch.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"wavetrack/domain/crosstab"
)

// TTestMeans runs the two-sample pooled-variance, two-tailed t-test.
//
// Pooled variance = ((n1-1)*sd1^2 + (n2-1)*sd2^2) / (n1+n2-2),
// df = n1+n2-2, t = (mean2-mean1)/SE with SE = sqrt(pooled*(1/n1+1/n2)).
//
// Sample sizes are float64 because callers pass design-effect-adjusted
// effective n. Guard failures (n <= 0, df <= 0, undefined mean/sd, zero SE)
// return a result with NaN statistic and p-value, Significant=false and the
// guard code set.
func TTestMeans(mean1, sd1, n1, mean2, sd2, n2, alpha float64) crosstab.SignificanceResult {
	res := crosstab.SignificanceResult{
		Statistic: math.NaN(),
		PValue:    math.NaN(),
		Alpha:     alpha,
	}

	if n1 <= 0 || n2 <= 0 {
		res.Guard = crosstab.GuardInsufficientN
		return res
	}
	if math.IsNaN(mean1) || math.IsNaN(mean2) || math.IsNaN(sd1) || math.IsNaN(sd2) {
		res.Guard = crosstab.GuardUndefinedMean
		return res
	}

	df := n1 + n2 - 2
	if df <= 0 {
		res.Guard = crosstab.GuardInsufficientN
		return res
	}

	pooled := ((n1-1)*sd1*sd1 + (n2-1)*sd2*sd2) / df
	se := math.Sqrt(pooled * (1/n1 + 1/n2))
	if se <= 0 || math.IsNaN(se) || math.IsInf(se, 0) {
		res.Guard = crosstab.GuardZeroVariance
		return res
	}

	t := (mean2 - mean1) / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))

	res.Statistic = t
	res.DF = df
	res.PValue = p
	res.Significant = p < alpha
	return res
}
