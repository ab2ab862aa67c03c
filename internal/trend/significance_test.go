package trend

import (
	"math"
	"testing"

	"wavetrack/domain/core"
	"wavetrack/domain/crosstab"
	"wavetrack/domain/metric"
	"wavetrack/domain/wave"
)

func TestPairwiseSignificance_MeanScenario(t *testing.T) {
	from := meanResult(8.2, 1.5, 500)
	to := meanResult(8.5, 1.4, 480)
	spec := metric.Spec{Name: "mean", Type: metric.TypeMean}

	res := PairwiseSignificance(from, to, spec, 0.05)
	if !res.Guard.OK() {
		t.Fatalf("expected clean run, got guard %q", res.Guard)
	}
	if math.Abs(res.Statistic-3.2335) > 0.1 {
		t.Fatalf("t-statistic out of tolerance: got %v", res.Statistic)
	}
	if res.Code != crosstab.SigUp {
		t.Fatalf("expected sig code +1 for a significant increase, got %d", res.Code)
	}

	change := Change(ExtractMetricValue(from, spec), ExtractMetricValue(to, spec))
	if math.Abs(change-0.3) > 1e-6 {
		t.Fatalf("expected change 0.3, got %v", change)
	}
}

func TestPairwiseSignificance_ProportionScenario(t *testing.T) {
	from := proportionsResult([]string{"Yes"}, map[string]core.Percent{"Yes": 40}, 200)
	to := proportionsResult([]string{"Yes"}, map[string]core.Percent{"Yes": 60}, 200)
	spec := metric.ParseSpec("category:Yes", "", "single_choice")

	res := PairwiseSignificance(from, to, spec, 0.05)
	if !res.Guard.OK() {
		t.Fatalf("expected clean run, got guard %q", res.Guard)
	}
	// Converting to 0.40/0.60 and pooling gives z = 4.0 exactly.
	if math.Abs(res.Statistic-4.0) > 1e-9 {
		t.Fatalf("expected z=4.0, got %v", res.Statistic)
	}
	if res.PValue >= 0.001 {
		t.Fatalf("expected a tiny two-tailed p, got %v", res.PValue)
	}
	if res.Code != crosstab.SigUp {
		t.Fatalf("expected sig code +1, got %d", res.Code)
	}
}

func TestPairwiseSignificance_DirectionDown(t *testing.T) {
	from := proportionsResult([]string{"Yes"}, map[string]core.Percent{"Yes": 60}, 200)
	to := proportionsResult([]string{"Yes"}, map[string]core.Percent{"Yes": 40}, 200)
	spec := metric.ParseSpec("category:Yes", "", "single_choice")

	res := PairwiseSignificance(from, to, spec, 0.05)
	if res.Code != crosstab.SigDown {
		t.Fatalf("expected sig code -1 for a significant decrease, got %d", res.Code)
	}
}

func TestPairwiseSignificance_NPSUsesRecodeSD(t *testing.T) {
	from := &wave.NPSResult{Counts: wave.Counts{Unweighted: 400, Effective: 400}, Score: 20, SD: 85}
	to := &wave.NPSResult{Counts: wave.Counts{Unweighted: 400, Effective: 400}, Score: 35, SD: 82}
	spec := metric.Spec{Name: "nps", Type: metric.TypeNPS}

	res := PairwiseSignificance(from, to, spec, 0.05)
	if !res.Guard.OK() {
		t.Fatalf("expected clean t-test run for NPS, got guard %q", res.Guard)
	}
	if res.DF != 798 {
		t.Fatalf("expected df=798, got %v", res.DF)
	}
	if res.Statistic <= 0 {
		t.Fatalf("expected a positive t for an NPS increase, got %v", res.Statistic)
	}
}

func TestPairwiseSignificance_MissingWave(t *testing.T) {
	to := meanResult(8.5, 1.4, 480)
	for _, from := range []wave.Result{nil, &wave.Unavailable{Type: metric.TypeMean}} {
		res := PairwiseSignificance(from, to, metric.Spec{Name: "mean", Type: metric.TypeMean}, 0.05)
		if res.Guard != crosstab.GuardMissingWave {
			t.Fatalf("expected missing-wave guard, got %q", res.Guard)
		}
		if res.Code != crosstab.SigNone {
			t.Fatalf("expected sig code 0, got %d", res.Code)
		}
		if !math.IsNaN(res.PValue) {
			t.Fatalf("expected undefined p-value, got %v", res.PValue)
		}
	}
}

func TestPairwiseSignificance_UndersizedN(t *testing.T) {
	from := meanResult(8.2, 1.5, 1)
	to := meanResult(8.5, 1.4, 1)
	res := PairwiseSignificance(from, to, metric.Spec{Name: "mean", Type: metric.TypeMean}, 0.05)
	if res.Guard.OK() {
		t.Fatal("expected a guard for df <= 0")
	}
	if res.Significant || res.Code != crosstab.SigNone {
		t.Fatal("guarded comparison must not be significant")
	}
}

func TestPairwiseSignificance_WrongShapeForMeansTest(t *testing.T) {
	from := proportionsResult([]string{"Yes"}, map[string]core.Percent{"Yes": 40}, 200)
	to := proportionsResult([]string{"Yes"}, map[string]core.Percent{"Yes": 60}, 200)
	res := PairwiseSignificance(from, to, metric.Spec{Name: "mean", Type: metric.TypeMean}, 0.05)
	if res.Guard != crosstab.GuardUndefinedMean {
		t.Fatalf("expected undefined-mean guard for a share payload, got %q", res.Guard)
	}
}

func TestPairwiseSignificance_UntrendedType(t *testing.T) {
	from := meanResult(8.2, 1.5, 500)
	to := meanResult(8.5, 1.4, 480)
	res := PairwiseSignificance(from, to, metric.Spec{Name: "rank_1", Type: metric.TypeNone}, 0.05)
	if res.Guard != crosstab.GuardUntestedType {
		t.Fatalf("expected untested-type guard, got %q", res.Guard)
	}
}

func TestChange_UndefinedPropagates(t *testing.T) {
	if got := Change(math.NaN(), 5); !math.IsNaN(got) {
		t.Fatalf("expected undefined change, got %v", got)
	}
	if got := Change(2, 5); got != 3 {
		t.Fatalf("expected change 3, got %v", got)
	}
}
