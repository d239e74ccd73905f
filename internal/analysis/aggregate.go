package analysis

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/climatestory/storyboard/internal/convo"
	"github.com/climatestory/storyboard/internal/relevance"
)

// StudentMetrics is the per-student result of one aggregation pass.
// Recomputed per analysis run, never persisted.
type StudentMetrics struct {
	StudentName string
	StudentID   string

	RelevantPrompts   int
	TotalUserMessages int
	AssistantMessages int
	DurationMinutes   float64
	HasFeedback       bool

	Band  Band
	Score int
}

// RelevanceRatio returns relevant/total user messages, 0 when the student
// wrote nothing.
func (m StudentMetrics) RelevanceRatio() float64 {
	if m.TotalUserMessages == 0 {
		return 0
	}
	return float64(m.RelevantPrompts) / float64(m.TotalUserMessages)
}

// Aggregator scans one conversation record and produces StudentMetrics.
// It only reads records; the store owns all mutation.
type Aggregator struct {
	judge relevance.Judge
}

// NewAggregator creates an aggregator using the given relevance judge.
func NewAggregator(judge relevance.Judge) *Aggregator {
	return &Aggregator{judge: judge}
}

// Aggregate walks the record's messages in stored order.
//
// Every user turn counts toward the total. Only user turns that pass the
// minimum-length check are sent to the judge; shorter turns are treated as
// automatically irrelevant without consuming a gateway call. This caps the
// achievable relevance ratio when short turns are frequent. That matches
// the grading rubric, so don't "fix" it here.
//
// A single turn's classification failure never aborts the rest: the judge
// fails open and aggregation continues.
func (a *Aggregator) Aggregate(ctx context.Context, rec *convo.Record) StudentMetrics {
	m := StudentMetrics{
		StudentName: rec.StudentName,
		StudentID:   rec.StudentID,
		HasFeedback: rec.HasFeedback(),
	}

	for _, turn := range rec.Messages {
		switch turn.Role {
		case convo.RoleAssistant:
			m.AssistantMessages++
		case convo.RoleUser:
			m.TotalUserMessages++
			if !relevance.Substantive(turn.Content) {
				continue
			}
			relevant, err := a.judge.Relevant(ctx, turn.Content)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: relevance judgment degraded for %s: %v\n", rec.StudentID, err)
			}
			if relevant {
				m.RelevantPrompts++
			}
		}
	}

	m.DurationMinutes = durationMinutes(rec)
	m.Band, m.Score = Grade(m.RelevantPrompts)
	return m
}

// durationMinutes is the first-to-last turn span in minutes, rounded to a
// tenth the way the exported reports have always shown it.
func durationMinutes(rec *convo.Record) float64 {
	d := rec.Duration()
	if d <= 0 {
		return 0
	}
	return math.Round(d.Minutes()*10) / 10
}
