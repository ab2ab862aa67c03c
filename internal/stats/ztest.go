package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"wavetrack/domain/crosstab"
)

// ZTestProportions runs the two-sample pooled-proportion, two-tailed z-test.
// Inputs are on the 0-1 probability scale; this is the only layer of the
// engine where that scale exists. Callers converting from the 0-100 display
// scale divide by 100 immediately before this call.
//
// Pooled p = (p1*n1 + p2*n2)/(n1+n2), SE = sqrt(p*(1-p)*(1/n1+1/n2)),
// z = (p2-p1)/SE. Guard failures (n <= 0, p outside [0,1], zero SE) return
// NaN statistic/p-value with the guard code set; the function never panics.
func ZTestProportions(p1, n1, p2, n2, alpha float64) crosstab.SignificanceResult {
	res := crosstab.SignificanceResult{
		Statistic: math.NaN(),
		PValue:    math.NaN(),
		Alpha:     alpha,
	}

	if n1 <= 0 || n2 <= 0 {
		res.Guard = crosstab.GuardInsufficientN
		return res
	}
	if math.IsNaN(p1) || math.IsNaN(p2) || p1 < 0 || p1 > 1 || p2 < 0 || p2 > 1 {
		res.Guard = crosstab.GuardBadProportion
		return res
	}

	pooled := (p1*n1 + p2*n2) / (n1 + n2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))
	if se <= 0 || math.IsNaN(se) {
		res.Guard = crosstab.GuardZeroVariance
		return res
	}

	z := (p2 - p1) / se
	p := 2 * distuv.UnitNormal.CDF(-math.Abs(z))

	res.Statistic = z
	res.PValue = p
	res.Significant = p < alpha
	return res
}
