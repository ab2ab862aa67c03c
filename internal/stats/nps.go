package stats

import (
	"math"

	"wavetrack/domain/core"
)

// NPSOutcome is the weighted net-promoter computation over 0-10 likelihood
// scores. Score is on the -100..+100 scale; SD is the sample standard
// deviation of the -100/0/+100 recode, which pairwise significance uses.
type NPSOutcome struct {
	Score      float64      `json:"score"`
	SD         float64      `json:"sd"`
	Promoters  core.Percent `json:"promoters"`
	Passives   core.Percent `json:"passives"`
	Detractors core.Percent `json:"detractors"`
	N          int          `json:"n"`
	WeightedN  float64      `json:"weighted_n"`
}

// NPSScore computes the weighted Net Promoter Score: detractors are scores
// <= 6, passives 7-8, promoters >= 9; NPS = %promoters - %detractors.
// All-promoter input yields exactly +100, all-detractor exactly -100.
// Zero valid observations yield NaN score and undefined shares.
func NPSScore(values, weights []float64) NPSOutcome {
	out := NPSOutcome{
		Score:      math.NaN(),
		SD:         math.NaN(),
		Promoters:  core.UndefinedPercent(),
		Passives:   core.UndefinedPercent(),
		Detractors: core.UndefinedPercent(),
	}
	if len(values) != len(weights) {
		return out
	}

	var sumW, wPromoters, wPassives, wDetractors float64
	n := 0
	for i, v := range values {
		w := weights[i]
		if !validPair(v, w) {
			continue
		}
		switch {
		case v <= 6:
			wDetractors += w
		case v <= 8:
			wPassives += w
		default:
			wPromoters += w
		}
		sumW += w
		n++
	}
	out.N = n
	out.WeightedN = sumW
	if n == 0 || sumW <= 0 {
		return out
	}

	out.Promoters = core.PercentOf(wPromoters / sumW)
	out.Passives = core.PercentOf(wPassives / sumW)
	out.Detractors = core.PercentOf(wDetractors / sumW)
	out.Score = out.Promoters.Float() - out.Detractors.Float()

	// Dispersion of the -100/0/+100 recode, reusing the weighted-mean
	// machinery so the sample-variance convention stays in one place.
	recoded := make([]float64, 0, n)
	recodedW := make([]float64, 0, n)
	for i, v := range values {
		w := weights[i]
		if !validPair(v, w) {
			continue
		}
		switch {
		case v <= 6:
			recoded = append(recoded, -100)
		case v <= 8:
			recoded = append(recoded, 0)
		default:
			recoded = append(recoded, 100)
		}
		recodedW = append(recodedW, w)
	}
	out.SD = WeightedMean(recoded, recodedW).SD
	return out
}
