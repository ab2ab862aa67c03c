// Package wavecalc is the in-memory per-wave statistical calculator: it
// turns already-loaded respondent value/weight vectors into the WaveResult
// bundles the crosstab engine consumes. File and spreadsheet ingestion live
// a layer further out and never enter this package.
package wavecalc

import (
	"fmt"
	"sort"

	"wavetrack/domain/core"
	"wavetrack/domain/metric"
	"wavetrack/domain/wave"
	"wavetrack/internal"
	"wavetrack/internal/config"
	"wavetrack/internal/stats"
	"wavetrack/ports"
)

// CellData is one (question, wave, segment) slice of respondent data.
// Values and Weights are index-matched. Items carries the 0/1 indicator
// vectors of multi-mention questions, each sharing Weights.
type CellData struct {
	Values  []float64
	Weights []float64
	Items   map[string][]float64
	// ItemOrder fixes the mention order so "first item" is stable.
	ItemOrder []string
}

// CellMap indexes cells by wave then segment.
type CellMap map[core.WaveID]map[core.SegmentName]*CellData

// Set inserts a cell, creating the wave level as needed.
func (m CellMap) Set(waveID core.WaveID, segment core.SegmentName, cell *CellData) {
	perSegment, ok := m[waveID]
	if !ok {
		perSegment = make(map[core.SegmentName]*CellData)
		m[waveID] = perSegment
	}
	perSegment[segment] = cell
}

// QuestionData is everything the calculator knows about one question.
type QuestionData struct {
	Type string // free-form upstream question-type label
	// Categories maps response codes to display labels for the proportion
	// shapes and for named boxes on rating scales.
	Categories map[float64]string
	// CategoryOrder fixes the code order; ascending codes when empty.
	CategoryOrder []float64
	// Derive lists extra metric-spec strings (top2_box, box:Agree,
	// range:4-5) precomputed into the mean payload's score map.
	Derive []string
	Cells  CellMap
}

// Study is the loaded dataset for one run.
type Study struct {
	Questions map[core.QuestionCode]*QuestionData
}

// Calculator implements ports.WaveCalculator over a Study.
type Calculator struct {
	study *Study
	log   *internal.Logger
}

// New creates a calculator. A nil logger suppresses diagnostics.
func New(study *Study, logger *internal.Logger) *Calculator {
	return &Calculator{study: study, log: logger}
}

// Calculate computes the WaveResult for one cell. A question or cell absent
// from the study yields an Unavailable result, not an error; only a nil
// study is a caller bug worth surfacing.
func (c *Calculator) Calculate(question core.QuestionCode, waveID core.WaveID, segment core.SegmentName) (wave.Result, error) {
	if c.study == nil {
		return nil, fmt.Errorf("wavecalc: no study loaded")
	}
	q, ok := c.study.Questions[question]
	if !ok {
		return &wave.Unavailable{}, nil
	}
	metricType := metric.TypeForQuestion(q.Type)
	cell := q.cell(waveID, segment)
	if cell == nil {
		return &wave.Unavailable{Type: metricType}, nil
	}

	switch metricType {
	case metric.TypeMean, metric.TypeRatingEnhanced, metric.TypeComposite, metric.TypeCompositeEnhanced:
		return c.meanResult(q, cell, metricType), nil
	case metric.TypeNPS:
		return c.npsResult(cell), nil
	case metric.TypeProportions:
		return c.proportionsResult(q, cell), nil
	case metric.TypeMultiMention:
		items, shares, cnt := c.mentionShares(cell)
		return &wave.MultiMentionResult{Counts: cnt, Items: items, Shares: shares}, nil
	case metric.TypeCategoryMentions:
		items, shares, cnt := c.mentionShares(cell)
		return wave.NewCategoryMentionsResult(cnt, items, shares, nil), nil
	}
	return &wave.Unavailable{Type: metricType}, nil
}

// BuildTrendResults runs the calculator over every configured
// (question, segment, wave) cell, producing the set the builder consumes.
func (c *Calculator) BuildTrendResults(cfg *config.RunConfig) (ports.TrendResults, error) {
	results := make(ports.TrendResults, len(cfg.Questions))
	for _, q := range cfg.Questions {
		if c.study == nil || c.study.Questions[q.Code] == nil {
			continue
		}
		perSegment := make(map[core.SegmentName]map[core.WaveID]wave.Result, len(cfg.Segments))
		for _, segment := range cfg.Segments {
			perWave := make(map[core.WaveID]wave.Result, len(cfg.Waves))
			for _, w := range cfg.Waves {
				wr, err := c.Calculate(q.Code, w.ID, segment)
				if err != nil {
					return nil, err
				}
				perWave[w.ID] = wr
			}
			perSegment[segment] = perWave
		}
		results[q.Code] = perSegment
		c.log.Debug("computed wave results for %s (%d segments x %d waves)",
			q.Code, len(cfg.Segments), len(cfg.Waves))
	}
	return results, nil
}

func (q *QuestionData) cell(waveID core.WaveID, segment core.SegmentName) *CellData {
	perSegment, ok := q.Cells[waveID]
	if !ok {
		return nil
	}
	cell := perSegment[segment]
	if cell != nil && len(cell.Weights) == 0 && len(cell.Values) > 0 {
		cell = cell.withUnitWeights()
	}
	return cell
}

// withUnitWeights copies the cell with every respondent weighted 1, the
// convention for unweighted studies.
func (d *CellData) withUnitWeights() *CellData {
	out := *d
	out.Weights = make([]float64, len(d.Values))
	for i := range out.Weights {
		out.Weights[i] = 1
	}
	return &out
}

func (c *Calculator) meanResult(q *QuestionData, cell *CellData, metricType metric.Type) *wave.MeanResult {
	wm := stats.WeightedMean(cell.Values, cell.Weights)
	res := &wave.MeanResult{
		Counts: counts(cell.Weights, cell.Values, wm.N, wm.WeightedN),
		Mean:   wm.Mean,
		SD:     wm.SD,
		Type:   metricType,
	}

	specs := append([]string(nil), q.Derive...)
	for _, label := range q.Categories {
		specs = append(specs, "box:"+label)
	}
	if len(specs) == 0 {
		return res
	}
	res.Scores = make(map[string]core.Percent, len(specs))
	for _, raw := range specs {
		spec := metric.ParseSpec(raw, "", q.Type)
		share := c.deriveScore(q, cell, spec)
		if share.Defined() {
			res.Scores[spec.Name] = share
		}
	}
	return res
}

// deriveScore computes one named share from the raw scale values.
func (c *Calculator) deriveScore(q *QuestionData, cell *CellData, spec metric.Spec) core.Percent {
	raw := spec.Raw
	switch {
	case boxCount(raw, "top") > 0:
		return stats.TopBox(cell.Values, cell.Weights, boxCount(raw, "top")).Share
	case boxCount(raw, "bottom") > 0:
		return stats.BottomBox(cell.Values, cell.Weights, boxCount(raw, "bottom")).Share
	case len(raw) > len("box:") && raw[:len("box:")] == "box:":
		return c.labeledBoxShare(q, cell, raw[len("box:"):])
	case len(raw) > len("range:") && raw[:len("range:")] == "range:":
		res, err := stats.CustomRange(cell.Values, cell.Weights, raw[len("range:"):])
		if err != nil {
			c.log.Warn("ignoring malformed range spec: %v", err)
		}
		return res.Share
	}
	c.log.Warn("cannot derive score for spec %q", raw)
	return core.UndefinedPercent()
}

// labeledBoxShare is the share of scale codes carrying the given label.
func (c *Calculator) labeledBoxShare(q *QuestionData, cell *CellData, label string) core.Percent {
	want := core.NormalizeKey(label)
	table := stats.Distribution(cell.Values, cell.Weights)
	var total float64
	found := false
	for code, codeLabel := range q.Categories {
		if core.NormalizeKey(codeLabel) != want {
			continue
		}
		if share := table.Share(code); share.Defined() {
			total += share.Float()
			found = true
		}
	}
	if !found {
		return core.UndefinedPercent()
	}
	return core.Percent(total)
}

func (c *Calculator) npsResult(cell *CellData) *wave.NPSResult {
	out := stats.NPSScore(cell.Values, cell.Weights)
	return &wave.NPSResult{
		Counts:     counts(cell.Weights, cell.Values, out.N, out.WeightedN),
		Score:      out.Score,
		SD:         out.SD,
		Promoters:  out.Promoters,
		Passives:   out.Passives,
		Detractors: out.Detractors,
	}
}

func (c *Calculator) proportionsResult(q *QuestionData, cell *CellData) *wave.ProportionsResult {
	codes := q.orderedCodes()
	table := stats.Proportions(cell.Values, cell.Weights, codes)

	categories := make([]string, 0, len(table.Codes))
	shares := make(map[string]core.Percent, len(table.Codes))
	for _, code := range table.Codes {
		label := q.labelFor(code)
		categories = append(categories, label)
		shares[core.NormalizeKey(label)] = table.Share(code)
	}
	return wave.NewProportionsResult(
		counts(cell.Weights, cell.Values, table.N, table.WeightedN),
		categories, shares, nil,
	)
}

func (c *Calculator) mentionShares(cell *CellData) ([]string, map[string]core.Percent, wave.Counts) {
	order := cell.ItemOrder
	if len(order) == 0 {
		order = make([]string, 0, len(cell.Items))
		for label := range cell.Items {
			order = append(order, label)
		}
		sort.Strings(order)
	}

	shares := make(map[string]core.Percent, len(order))
	var cnt wave.Counts
	for _, label := range order {
		indicator, ok := cell.Items[label]
		if !ok {
			continue
		}
		weights := cell.Weights
		if len(weights) != len(indicator) {
			weights = unitWeights(len(indicator))
		}
		wm := stats.WeightedMean(indicator, weights)
		if wm.N > cnt.Unweighted {
			cnt = counts(weights, indicator, wm.N, wm.WeightedN)
		}
		if !isUndefined(wm.Mean) {
			shares[core.NormalizeKey(label)] = core.PercentOf(wm.Mean)
		}
	}
	return order, shares, cnt
}

// orderedCodes returns the configured code set, ascending when no explicit
// order is set, nil when the question declares no categories (every
// observed value then participates).
func (q *QuestionData) orderedCodes() []float64 {
	if len(q.CategoryOrder) > 0 {
		return append([]float64(nil), q.CategoryOrder...)
	}
	if len(q.Categories) == 0 {
		return nil
	}
	codes := make([]float64, 0, len(q.Categories))
	for code := range q.Categories {
		codes = append(codes, code)
	}
	sort.Float64s(codes)
	return codes
}

func (q *QuestionData) labelFor(code float64) string {
	if label, ok := q.Categories[code]; ok && label != "" {
		return label
	}
	return fmt.Sprintf("%g", code)
}

// counts assembles the shared sample-size fields, deriving Kish's effective
// n from the weight distribution: (Σw)² / Σw².
func counts(weights, values []float64, n int, weightedN float64) wave.Counts {
	var sumW, sumWSq float64
	for i, w := range weights {
		if i < len(values) && isUndefined(values[i]) {
			continue
		}
		if isUndefined(w) || w <= 0 {
			continue
		}
		sumW += w
		sumWSq += w * w
	}
	eff := 0.0
	if sumWSq > 0 {
		eff = sumW * sumW / sumWSq
	}
	return wave.Counts{Unweighted: n, Weighted: weightedN, Effective: eff}
}

func isUndefined(v float64) bool { return v != v }

func unitWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

// boxCount parses "topN_box"/"bottomN_box", returning 0 for anything else.
func boxCount(raw, kind string) int {
	var n int
	var suffix string
	if _, err := fmt.Sscanf(raw, kind+"%d_%s", &n, &suffix); err != nil || suffix != "box" {
		return 0
	}
	return n
}
