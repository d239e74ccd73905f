package analysis

import (
	"context"

	"github.com/climatestory/storyboard/internal/convo"
)

// ProgressFunc reports batch progress after each completed record.
// current is 1-based. The callback is synchronous and must not assume it
// can alter aggregation results.
type ProgressFunc func(current, total int)

// Summary holds class-wide statistics across one batch run.
type Summary struct {
	Students             int
	MeanRelevantPrompts  float64
	MeanUserMessages     float64
	RelevanceRate        float64 // sum(relevant) / sum(total), 0 when no user messages
	TotalRelevantPrompts int
	TotalUserMessages    int
}

// Runner drives the aggregator over a set of conversation records.
type Runner struct {
	agg *Aggregator
}

// NewRunner creates a batch runner around the given aggregator.
func NewRunner(agg *Aggregator) *Runner {
	return &Runner{agg: agg}
}

// Run processes records in the order supplied and returns per-student
// metrics plus the class summary. An empty input yields an empty slice and
// a zero summary.
//
// Cancellation is cooperative: the context is checked between records, so
// a long batch stops promptly without interrupting a turn mid-judgment.
// On cancellation the metrics completed so far are returned with ctx.Err().
func (r *Runner) Run(ctx context.Context, records []*convo.Record, onProgress ProgressFunc) ([]StudentMetrics, Summary, error) {
	metrics := make([]StudentMetrics, 0, len(records))
	total := len(records)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return metrics, summarize(metrics), err
		}

		metrics = append(metrics, r.agg.Aggregate(ctx, rec))

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return metrics, summarize(metrics), nil
}

func summarize(metrics []StudentMetrics) Summary {
	s := Summary{Students: len(metrics)}
	if len(metrics) == 0 {
		return s
	}

	for _, m := range metrics {
		s.TotalRelevantPrompts += m.RelevantPrompts
		s.TotalUserMessages += m.TotalUserMessages
	}

	n := float64(len(metrics))
	s.MeanRelevantPrompts = float64(s.TotalRelevantPrompts) / n
	s.MeanUserMessages = float64(s.TotalUserMessages) / n
	if s.TotalUserMessages > 0 {
		s.RelevanceRate = float64(s.TotalRelevantPrompts) / float64(s.TotalUserMessages)
	}
	return s
}
