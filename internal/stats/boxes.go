package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	montanaflynn "github.com/montanaflynn/stats"

	"wavetrack/domain/core"
)

// BoxResult is a top-box / bottom-box / custom-range share: the weighted
// proportion of valid observations falling inside the selected raw values,
// plus which scale values were included.
type BoxResult struct {
	Share     core.Percent `json:"share"`
	Included  []float64    `json:"included"`
	N         int          `json:"n"`
	WeightedN float64      `json:"weighted_n"`
}

// TopBox auto-detects the observed integer scale from the data range (1-5,
// 0-10, ...) and returns the weighted share of the top nBoxes scale values.
func TopBox(values, weights []float64, nBoxes int) BoxResult {
	lo, hi, ok := observedScale(values, weights)
	if !ok || nBoxes <= 0 {
		return undefinedBox()
	}
	from := hi - float64(nBoxes) + 1
	if from < lo {
		from = lo
	}
	return rangeShare(values, weights, from, hi)
}

// BottomBox mirrors TopBox for the bottom of the scale.
func BottomBox(values, weights []float64, nBoxes int) BoxResult {
	lo, hi, ok := observedScale(values, weights)
	if !ok || nBoxes <= 0 {
		return undefinedBox()
	}
	to := lo + float64(nBoxes) - 1
	if to > hi {
		to = hi
	}
	return rangeShare(values, weights, lo, to)
}

// CustomRange scores a literal "low-high" range spec, e.g. "4-5". A
// malformed spec (no separator, non-numeric bounds, inverted order) is a
// soft failure: the returned error is a warning for the caller's log and the
// share is undefined; the run continues.
func CustomRange(values, weights []float64, spec string) (BoxResult, error) {
	low, high, err := parseRangeSpec(spec)
	if err != nil {
		return undefinedBox(), err
	}
	return rangeShare(values, weights, low, high), nil
}

// parseRangeSpec splits "A-B" on the first separator after position zero so
// a negative low bound still parses.
func parseRangeSpec(spec string) (low, high float64, err error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return 0, 0, fmt.Errorf("malformed range spec %q: empty", spec)
	}
	sep := strings.Index(s[1:], "-")
	if sep < 0 {
		return 0, 0, fmt.Errorf("malformed range spec %q: expected \"low-high\"", spec)
	}
	sep++ // index was relative to s[1:]
	low, errLow := strconv.ParseFloat(strings.TrimSpace(s[:sep]), 64)
	high, errHigh := strconv.ParseFloat(strings.TrimSpace(s[sep+1:]), 64)
	if errLow != nil || errHigh != nil {
		return 0, 0, fmt.Errorf("malformed range spec %q: non-numeric bounds", spec)
	}
	if low > high {
		return 0, 0, fmt.Errorf("malformed range spec %q: low bound above high", spec)
	}
	return low, high, nil
}

// observedScale finds the integer scale spanned by the valid observations.
func observedScale(values, weights []float64) (lo, hi float64, ok bool) {
	if len(values) != len(weights) {
		return 0, 0, false
	}
	valid := make([]float64, 0, len(values))
	for i, v := range values {
		if validPair(v, weights[i]) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return 0, 0, false
	}
	minV, err := montanaflynn.Min(valid)
	if err != nil {
		return 0, 0, false
	}
	maxV, err := montanaflynn.Max(valid)
	if err != nil {
		return 0, 0, false
	}
	return math.Floor(minV), math.Ceil(maxV), true
}

// rangeShare computes the weighted share of observations in [low, high].
func rangeShare(values, weights []float64, low, high float64) BoxResult {
	var sumW, inW float64
	n := 0
	for i, v := range values {
		w := weights[i]
		if !validPair(v, w) {
			continue
		}
		sumW += w
		n++
		if v >= low && v <= high {
			inW += w
		}
	}
	res := BoxResult{N: n, WeightedN: sumW, Share: core.UndefinedPercent()}
	if n == 0 || sumW <= 0 {
		return res
	}
	res.Share = core.PercentOf(inW / sumW)
	for v := math.Ceil(low); v <= high; v++ {
		res.Included = append(res.Included, v)
	}
	return res
}

func undefinedBox() BoxResult {
	return BoxResult{Share: core.UndefinedPercent()}
}
