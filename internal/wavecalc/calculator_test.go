package wavecalc

import (
	"math"
	"testing"

	"wavetrack/domain/core"
	"wavetrack/domain/wave"
	"wavetrack/internal/config"
)

const (
	waveQ1 = core.WaveID("2026q1")
	waveQ2 = core.WaveID("2026q2")
	total  = core.SegmentName("Total")
)

func ratingStudy() *Study {
	return &Study{Questions: map[core.QuestionCode]*QuestionData{
		"Q1": {
			Type: "rating",
			Categories: map[float64]string{
				4: "Agree",
				5: "Strongly Agree",
			},
			Derive: []string{"top2_box"},
			Cells: map[core.WaveID]map[core.SegmentName]*CellData{
				waveQ1: {
					total: {
						Values:  []float64{5, 4, 4, 3, 2, 5, 4, 1},
						Weights: []float64{1, 1, 1, 1, 1, 1, 1, 1},
					},
				},
			},
		},
	}}
}

func TestCalculateMeanWithDerivedScores(t *testing.T) {
	calc := New(ratingStudy(), nil)

	res, err := calc.Calculate("Q1", waveQ1, total)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	mr, ok := res.(*wave.MeanResult)
	if !ok {
		t.Fatalf("expected MeanResult, got %T", res)
	}
	if !mr.Available() {
		t.Fatal("expected available result")
	}
	if mr.UnweightedN() != 8 {
		t.Fatalf("n = %d, want 8", mr.UnweightedN())
	}
	if diff := math.Abs(mr.Mean - 3.5); diff > 1e-9 {
		t.Fatalf("mean = %v, want 3.5", mr.Mean)
	}

	// 5 of 8 answers are 4 or 5.
	top2 := mr.Score("top2_box")
	if !top2.Defined() {
		t.Fatal("missing top2_box score")
	}
	if diff := math.Abs(top2.Float() - 62.5); diff > 1e-9 {
		t.Fatalf("top2_box = %v, want 62.5", top2)
	}

	// Labeled categories yield named box shares without configuration.
	agree := mr.Score("box_agree")
	if !agree.Defined() {
		t.Fatal("missing box_agree score")
	}
	if diff := math.Abs(agree.Float() - 37.5); diff > 1e-9 {
		t.Fatalf("box_agree = %v, want 37.5", agree)
	}
}

func TestCalculateUnweightedCellGetsUnitWeights(t *testing.T) {
	study := ratingStudy()
	study.Questions["Q1"].Cells[waveQ1][total].Weights = nil
	calc := New(study, nil)

	res, err := calc.Calculate("Q1", waveQ1, total)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	mr := res.(*wave.MeanResult)
	if mr.UnweightedN() != 8 {
		t.Fatalf("n = %d, want 8", mr.UnweightedN())
	}
	if diff := math.Abs(mr.WeightedN() - 8); diff > 1e-9 {
		t.Fatalf("weighted n = %v, want 8", mr.WeightedN())
	}
	if diff := math.Abs(mr.EffectiveN() - 8); diff > 1e-9 {
		t.Fatalf("effective n = %v, want 8 under unit weights", mr.EffectiveN())
	}
}

func TestCalculateEffectiveNShrinksUnderUnevenWeights(t *testing.T) {
	study := ratingStudy()
	study.Questions["Q1"].Cells[waveQ1][total] = &CellData{
		Values:  []float64{5, 4, 3, 2},
		Weights: []float64{3, 1, 1, 1},
	}
	calc := New(study, nil)

	res, _ := calc.Calculate("Q1", waveQ1, total)
	mr := res.(*wave.MeanResult)
	// Kish: (3+1+1+1)^2 / (9+1+1+1) = 36/12 = 3.
	if diff := math.Abs(mr.EffectiveN() - 3); diff > 1e-9 {
		t.Fatalf("effective n = %v, want 3", mr.EffectiveN())
	}
	if mr.UnweightedN() != 4 {
		t.Fatalf("n = %d, want 4", mr.UnweightedN())
	}
}

func TestCalculateNPS(t *testing.T) {
	study := &Study{Questions: map[core.QuestionCode]*QuestionData{
		"REC": {
			Type: "nps",
			Cells: map[core.WaveID]map[core.SegmentName]*CellData{
				waveQ1: {
					total: {
						Values:  []float64{10, 9, 8, 7, 6, 0, 9, 10, 3, 8},
						Weights: []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
					},
				},
			},
		},
	}}
	calc := New(study, nil)

	res, err := calc.Calculate("REC", waveQ1, total)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	nr, ok := res.(*wave.NPSResult)
	if !ok {
		t.Fatalf("expected NPSResult, got %T", res)
	}
	// 4 promoters, 3 passives, 3 detractors of 10: 40 - 30 = 10.
	if diff := math.Abs(nr.Score - 10); diff > 1e-9 {
		t.Fatalf("nps = %v, want 10", nr.Score)
	}
	if math.IsNaN(nr.SD) || nr.SD <= 0 {
		t.Fatalf("expected dispersion for mixed responses, got %v", nr.SD)
	}
}

func TestCalculateProportionsZeroFillsConfiguredCodes(t *testing.T) {
	study := &Study{Questions: map[core.QuestionCode]*QuestionData{
		"AWARE": {
			Type: "single_select",
			Categories: map[float64]string{
				1: "Yes",
				2: "No",
				3: "Not Sure",
			},
			Cells: map[core.WaveID]map[core.SegmentName]*CellData{
				waveQ1: {
					total: {
						Values:  []float64{1, 1, 1, 2},
						Weights: []float64{1, 1, 1, 1},
					},
				},
			},
		},
	}}
	calc := New(study, nil)

	res, _ := calc.Calculate("AWARE", waveQ1, total)
	pr, ok := res.(*wave.ProportionsResult)
	if !ok {
		t.Fatalf("expected ProportionsResult, got %T", res)
	}
	if len(pr.Categories) != 3 {
		t.Fatalf("categories = %v, want all three configured", pr.Categories)
	}
	if pr.Categories[0] != "Yes" || pr.Categories[2] != "Not Sure" {
		t.Fatalf("category order = %v", pr.Categories)
	}
	yes := pr.Share("Yes")
	if diff := math.Abs(yes.Float() - 75); diff > 1e-9 {
		t.Fatalf("yes = %v, want 75", yes)
	}
	notSure := pr.Share("Not Sure")
	if !notSure.Defined() {
		t.Fatal("unobserved configured code must still report a share")
	}
	if notSure.Float() != 0 {
		t.Fatalf("not sure = %v, want 0", notSure)
	}
}

func TestCalculateMultiMention(t *testing.T) {
	study := &Study{Questions: map[core.QuestionCode]*QuestionData{
		"SRC": {
			Type: "multi_select",
			Cells: map[core.WaveID]map[core.SegmentName]*CellData{
				waveQ1: {
					total: {
						Weights: []float64{1, 1, 1, 1},
						Items: map[string][]float64{
							"Search":  {1, 1, 0, 1},
							"Friends": {0, 1, 0, 0},
						},
						ItemOrder: []string{"Search", "Friends"},
					},
				},
			},
		},
	}}
	calc := New(study, nil)

	res, _ := calc.Calculate("SRC", waveQ1, total)
	mm, ok := res.(*wave.MultiMentionResult)
	if !ok {
		t.Fatalf("expected MultiMentionResult, got %T", res)
	}
	if len(mm.Items) != 2 || mm.Items[0] != "Search" {
		t.Fatalf("items = %v", mm.Items)
	}
	search := mm.Share("Search")
	if diff := math.Abs(search.Float() - 75); diff > 1e-9 {
		t.Fatalf("search = %v, want 75", search)
	}
	friends := mm.Share("Friends")
	if diff := math.Abs(friends.Float() - 25); diff > 1e-9 {
		t.Fatalf("friends = %v, want 25", friends)
	}
	if mm.UnweightedN() != 4 {
		t.Fatalf("n = %d, want 4", mm.UnweightedN())
	}
}

func TestCalculateMissingCellIsUnavailable(t *testing.T) {
	calc := New(ratingStudy(), nil)

	res, err := calc.Calculate("Q1", waveQ2, total)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.Available() {
		t.Fatal("missing cell must be unavailable, not an error")
	}

	res, err = calc.Calculate("NOPE", waveQ1, total)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.Available() {
		t.Fatal("unknown question must be unavailable")
	}
}

func TestBuildTrendResultsCoversConfiguredGrid(t *testing.T) {
	study := ratingStudy()
	study.Questions["Q1"].Cells[waveQ2] = map[core.SegmentName]*CellData{
		total: {
			Values:  []float64{5, 5, 4, 4, 3},
			Weights: []float64{1, 1, 1, 1, 1},
		},
	}
	calc := New(study, nil)

	cfg := &config.RunConfig{
		Waves: []config.WaveSpec{
			{ID: waveQ1, Label: "Q1 2026"},
			{ID: waveQ2, Label: "Q2 2026"},
		},
		Questions: []config.TrackedQuestion{
			{Code: "Q1", QuestionType: "rating", Section: "Brand"},
			{Code: "MISSING", QuestionType: "rating", Section: "Brand"},
		},
		Segments: []core.SegmentName{total},
	}

	results, err := calc.BuildTrendResults(cfg)
	if err != nil {
		t.Fatalf("BuildTrendResults: %v", err)
	}
	if !results.Has("Q1") {
		t.Fatal("expected results for Q1")
	}
	if results.Has("MISSING") {
		t.Fatal("questions absent from the study must be omitted entirely")
	}
	for _, waveID := range []core.WaveID{waveQ1, waveQ2} {
		wr := results.Lookup("Q1", total, waveID)
		if wr == nil || !wr.Available() {
			t.Fatalf("missing result for wave %s", waveID)
		}
	}
}
