package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// WeightedMeanResult bundles the descriptives for one weighted variable.
// Undefined fields are NaN: SD with fewer than two observations, everything
// with zero valid observations.
type WeightedMeanResult struct {
	Mean      float64 `json:"mean"`
	SD        float64 `json:"sd"`
	N         int     `json:"n"`
	WeightedN float64 `json:"weighted_n"`
	CILow     float64 `json:"ci_low"`
	CIHigh    float64 `json:"ci_high"`
}

// WeightedMean computes the weighted mean, frequency-weight sample standard
// deviation and a normal-approximation 95% confidence interval. Pairs where
// either side is NaN or the weight is exactly zero are excluded. Weights and
// values are matched by index; a length mismatch is treated as no data.
func WeightedMean(values, weights []float64) WeightedMeanResult {
	undefined := math.NaN()
	res := WeightedMeanResult{
		Mean:   undefined,
		SD:     undefined,
		CILow:  undefined,
		CIHigh: undefined,
	}
	if len(values) != len(weights) {
		return res
	}

	var sumW, sumWX float64
	n := 0
	for i, v := range values {
		w := weights[i]
		if !validPair(v, w) {
			continue
		}
		sumW += w
		sumWX += w * v
		n++
	}
	res.N = n
	res.WeightedN = sumW
	if n == 0 || sumW <= 0 {
		return res
	}

	mean := sumWX / sumW
	res.Mean = mean
	if n < 2 {
		return res
	}

	var sumWSq float64
	for i, v := range values {
		w := weights[i]
		if !validPair(v, w) {
			continue
		}
		d := v - mean
		sumWSq += w * d * d
	}
	if sumW <= 1 {
		return res
	}
	sd := math.Sqrt(sumWSq / (sumW - 1))
	res.SD = sd

	z := distuv.UnitNormal.Quantile(0.975)
	half := z * sd / math.Sqrt(float64(n))
	res.CILow = mean - half
	res.CIHigh = mean + half
	return res
}

// validPair filters the observations every weighted primitive agrees on:
// defined value, defined weight, weight strictly positive. Negative weights
// do not occur in fielded tracking data and would corrupt every denominator,
// so they are excluded with the zero weights.
func validPair(v, w float64) bool {
	return !math.IsNaN(v) && !math.IsNaN(w) && w > 0
}
