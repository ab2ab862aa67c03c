package stats

import (
	"math"
	"testing"
)

func TestTopBox_DetectsFivePointScale(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 5, 4, 3}
	res := TopBox(values, unitWeights(len(values)), 2)
	// 4s and 5s: 4 of 8 observations.
	if math.Abs(res.Share.Float()-50) > 1e-9 {
		t.Fatalf("expected top-2 share 50, got %v", res.Share)
	}
	if len(res.Included) != 2 || res.Included[0] != 4 || res.Included[1] != 5 {
		t.Fatalf("expected included values [4 5], got %v", res.Included)
	}
}

func TestTopBox_DetectsElevenPointScale(t *testing.T) {
	values := []float64{0, 2, 5, 7, 9, 10, 10, 8}
	res := TopBox(values, unitWeights(len(values)), 2)
	// 9s and 10s on a 0-10 scale: 3 of 8.
	if math.Abs(res.Share.Float()-37.5) > 1e-9 {
		t.Fatalf("expected top-2 share 37.5, got %v", res.Share)
	}
}

func TestBottomBox(t *testing.T) {
	values := []float64{1, 1, 2, 4, 5}
	res := BottomBox(values, unitWeights(len(values)), 2)
	if math.Abs(res.Share.Float()-60) > 1e-9 {
		t.Fatalf("expected bottom-2 share 60, got %v", res.Share)
	}
	if len(res.Included) != 2 || res.Included[0] != 1 || res.Included[1] != 2 {
		t.Fatalf("expected included values [1 2], got %v", res.Included)
	}
}

func TestTopBox_OversizedBoxCountClamps(t *testing.T) {
	values := []float64{1, 2, 3}
	res := TopBox(values, unitWeights(len(values)), 10)
	if math.Abs(res.Share.Float()-100) > 1e-9 {
		t.Fatalf("box count beyond the scale covers everything, got %v", res.Share)
	}
}

func TestCustomRange(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	res, err := CustomRange(values, unitWeights(len(values)), "4-5")
	if err != nil {
		t.Fatalf("well-formed range must parse: %v", err)
	}
	if math.Abs(res.Share.Float()-40) > 1e-9 {
		t.Fatalf("expected range share 40, got %v", res.Share)
	}
}

func TestCustomRange_NegativeLowBound(t *testing.T) {
	values := []float64{-2, -1, 0, 1, 2}
	res, err := CustomRange(values, unitWeights(len(values)), "-2-0")
	if err != nil {
		t.Fatalf("negative low bound must parse: %v", err)
	}
	if math.Abs(res.Share.Float()-60) > 1e-9 {
		t.Fatalf("expected range share 60, got %v", res.Share)
	}
}

func TestCustomRange_MalformedIsSoftFailure(t *testing.T) {
	values := []float64{1, 2, 3}
	for _, spec := range []string{"", "oops", "4to5", "a-b", "5-4"} {
		res, err := CustomRange(values, unitWeights(len(values)), spec)
		if err == nil {
			t.Fatalf("spec %q must be rejected with a warning", spec)
		}
		if res.Share.Defined() {
			t.Fatalf("spec %q must yield an undefined share, got %v", spec, res.Share)
		}
	}
}

func TestTopBox_NoValidObservations(t *testing.T) {
	res := TopBox([]float64{math.NaN()}, []float64{1}, 2)
	if res.Share.Defined() {
		t.Fatalf("no data must leave the share undefined, got %v", res.Share)
	}
}
