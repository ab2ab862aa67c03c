package stats

import (
	"math"
	"sort"

	"wavetrack/domain/core"
)

// FrequencyTable is a weighted frequency tabulation on the 0-100 scale.
// Shares over Codes sum to 100 (within floating tolerance) whenever at least
// one valid observation fell inside the selected code set.
type FrequencyTable struct {
	Codes     []float64                `json:"codes"`
	Shares    map[float64]core.Percent `json:"shares"`
	N         int                      `json:"n"`
	WeightedN float64                  `json:"weighted_n"`
}

// Proportions tabulates weighted shares per response code. When codes is
// non-nil the tabulation is restricted to that set: codes absent from the
// data are zero-filled rather than omitted, observations outside the set are
// excluded from the denominator, and the configured code order is kept.
// With a nil code list every observed value participates, sorted ascending.
func Proportions(values, weights []float64, codes []float64) FrequencyTable {
	table := FrequencyTable{Shares: make(map[float64]core.Percent)}
	if len(values) != len(weights) {
		return table
	}

	var selected map[float64]bool
	if codes != nil {
		selected = make(map[float64]bool, len(codes))
		for _, c := range codes {
			selected[c] = true
		}
	}

	sums := make(map[float64]float64)
	var sumW float64
	n := 0
	for i, v := range values {
		w := weights[i]
		if !validPair(v, w) {
			continue
		}
		if selected != nil && !selected[v] {
			continue
		}
		sums[v] += w
		sumW += w
		n++
	}
	table.N = n
	table.WeightedN = sumW

	if codes != nil {
		table.Codes = append([]float64(nil), codes...)
	} else {
		for v := range sums {
			table.Codes = append(table.Codes, v)
		}
		sort.Float64s(table.Codes)
	}

	for _, c := range table.Codes {
		if sumW <= 0 {
			table.Shares[c] = core.UndefinedPercent()
			continue
		}
		table.Shares[c] = core.PercentOf(sums[c] / sumW)
	}
	return table
}

// Distribution is the full weighted histogram keyed by distinct observed
// value, sorted ascending, shares summing to 100.
func Distribution(values, weights []float64) FrequencyTable {
	return Proportions(values, weights, nil)
}

// Share resolves one code's share, undefined when the code is outside the
// tabulated set.
func (t FrequencyTable) Share(code float64) core.Percent {
	if v, ok := t.Shares[code]; ok {
		return v
	}
	return core.UndefinedPercent()
}

// Sum returns the total of the defined shares, used by validity checks.
func (t FrequencyTable) Sum() float64 {
	var total float64
	for _, v := range t.Shares {
		if v.Defined() {
			total += v.Float()
		}
	}
	if len(t.Shares) == 0 {
		return math.NaN()
	}
	return total
}
