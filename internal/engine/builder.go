// Package engine assembles the multi-wave tracking crosstab: tracked
// questions crossed with configured metrics, segments and the fixed wave
// sequence.
package engine

import (
	"context"
	"math"

	"golang.org/x/sync/semaphore"

	"wavetrack/domain/core"
	"wavetrack/domain/crosstab"
	"wavetrack/domain/metric"
	"wavetrack/internal"
	"wavetrack/internal/config"
	"wavetrack/internal/trend"
	"wavetrack/ports"
)

// Builder turns per-wave trend results into the assembled crosstab. It holds
// no state across runs beyond the logger.
type Builder struct {
	log *internal.Logger
}

// NewBuilder creates a builder. A nil logger suppresses progress output.
func NewBuilder(logger *internal.Logger) *Builder {
	return &Builder{log: logger}
}

// rowJob is one (question, spec) expansion, computed independently.
type rowJob struct {
	question core.QuestionCode
	spec     metric.Spec
	section  string
	sort     int
	qType    string
}

// Build assembles the crosstab. Configuration that makes the run
// meaningless is refused up front; everything after that degrades per cell.
// A question absent from the trend results, or an empty tracked-question
// list, is skipped without failing the run -- partial output is a valid,
// well-formed result.
func (b *Builder) Build(results ports.TrendResults, cfg *config.RunConfig, mapper ports.QuestionMapper) (*crosstab.Crosstab, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if mapper == nil {
		mapper = ports.StaticMapper{}
	}

	alpha := cfg.ResolvedAlpha()
	baseline := cfg.ResolvedBaseline()

	waves := make([]core.WaveID, 0, len(cfg.Waves))
	labels := make(map[core.WaveID]string, len(cfg.Waves))
	for _, w := range cfg.Waves {
		waves = append(waves, w.ID)
		label := w.Label
		if label == "" {
			label = string(w.ID)
		}
		labels[w.ID] = label
	}

	ct := &crosstab.Crosstab{
		RunID:       core.NewRunID(),
		GeneratedAt: core.Now(),
		Alpha:       alpha,
		Waves:       waves,
		WaveLabels:  labels,
		Baseline:    baseline,
		Segments:    append([]core.SegmentName(nil), cfg.Segments...),
		Skipped:     make(map[core.QuestionCode]string),
	}

	jobs := b.expandJobs(results, cfg, ct)
	b.log.Info("building crosstab: %d questions -> %d rows, %d segments, %d waves",
		len(cfg.Questions), len(jobs), len(cfg.Segments), len(waves))

	rows := make([]crosstab.MetricRow, len(jobs))
	if cfg.Workers > 1 {
		b.buildParallel(rows, jobs, results, mapper, ct, cfg.Workers)
	} else {
		for i, job := range jobs {
			rows[i] = b.buildRow(job, results, mapper, ct)
		}
	}

	crosstab.SortRows(rows)
	ct.Rows = rows
	ct.Sections = crosstab.SectionList(rows)
	if len(ct.Skipped) == 0 {
		ct.Skipped = nil
	}
	return ct, nil
}

// expandJobs turns each tracked question into one job per configured metric
// spec, preserving configured spec order.
func (b *Builder) expandJobs(results ports.TrendResults, cfg *config.RunConfig, ct *crosstab.Crosstab) []rowJob {
	var jobs []rowJob
	for _, q := range cfg.Questions {
		normType := metric.NormalizeQuestionType(q.QuestionType)
		if !metric.TypeForQuestion(normType).Trended() {
			ct.Skipped[q.Code] = "question type " + normType + " is not trended"
			b.log.Debug("skipping %s: untrended type %s", q.Code, normType)
			continue
		}
		if !results.Has(q.Code) {
			ct.Skipped[q.Code] = "no per-wave results supplied"
			b.log.Warn("skipping %s: no per-wave results", q.Code)
			continue
		}
		specs := cfg.SpecsFor(q, normType)
		if len(specs) == 0 {
			ct.Skipped[q.Code] = "no metric specs configured or defaulted"
			continue
		}
		for _, raw := range specs {
			label := ""
			if len(specs) == 1 {
				label = q.Label
			}
			jobs = append(jobs, rowJob{
				question: q.Code,
				spec:     metric.ParseSpec(raw, label, normType),
				section:  q.Section,
				sort:     q.SortOrder,
				qType:    normType,
			})
		}
	}
	return jobs
}

// buildParallel fills rows under a weighted semaphore. Each job writes only
// its own slot, so the output is identical to the sequential path.
func (b *Builder) buildParallel(rows []crosstab.MetricRow, jobs []rowJob, results ports.TrendResults, mapper ports.QuestionMapper, ct *crosstab.Crosstab, workers int) {
	sem := semaphore.NewWeighted(int64(workers))
	ctx := context.Background()
	for i, job := range jobs {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Background context never cancels; compute inline if it ever does.
			rows[i] = b.buildRow(job, results, mapper, ct)
			continue
		}
		go func(i int, job rowJob) {
			defer sem.Release(1)
			rows[i] = b.buildRow(job, results, mapper, ct)
		}(i, job)
	}
	// Draining the full weight waits for every in-flight row.
	if err := sem.Acquire(ctx, int64(workers)); err == nil {
		sem.Release(int64(workers))
	}
}

// buildRow fills one MetricRow across every segment and wave.
func (b *Builder) buildRow(job rowJob, results ports.TrendResults, mapper ports.QuestionMapper, ct *crosstab.Crosstab) crosstab.MetricRow {
	row := crosstab.MetricRow{
		Question:     job.question,
		Spec:         job.spec,
		Section:      job.section,
		SortOrder:    job.sort,
		QuestionType: job.qType,
		Segments:     make(map[core.SegmentName]crosstab.SegmentCells, len(ct.Segments)),
	}

	_, basePresent := mapper.FieldFor(job.question, ct.Baseline)

	for _, segment := range ct.Segments {
		cells := crosstab.NewSegmentCells(len(ct.Waves))
		baseResult := results.Lookup(job.question, segment, ct.Baseline)
		baseValue := trend.ExtractMetricValue(baseResult, job.spec)

		for wi, waveID := range ct.Waves {
			if _, present := mapper.FieldFor(job.question, waveID); !present {
				continue
			}
			wr := results.Lookup(job.question, segment, waveID)
			value := trend.ExtractMetricValue(wr, job.spec)
			if !math.IsNaN(value) {
				cells.Values[waveID] = value
			}
			if wr != nil && wr.Available() {
				cells.Ns[waveID] = float64(wr.UnweightedN())
			}

			if wi > 0 {
				prevID := ct.Waves[wi-1]
				prevResult := results.Lookup(job.question, segment, prevID)
				cells.SigPrev[waveID] = trend.PairwiseSignificance(prevResult, wr, job.spec, ct.Alpha)
				if change := trend.Change(trend.ExtractMetricValue(prevResult, job.spec), value); !math.IsNaN(change) {
					cells.ChangePrev[waveID] = change
				}
			}

			// The baseline wave carries no change-vs-baseline for itself.
			if waveID != ct.Baseline && basePresent {
				cells.SigBase[waveID] = trend.PairwiseSignificance(baseResult, wr, job.spec, ct.Alpha)
				if change := trend.Change(baseValue, value); !math.IsNaN(change) {
					cells.ChangeBase[waveID] = change
				}
			}
		}
		row.Segments[segment] = cells
	}
	return row
}
