package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/climatestory/storyboard/internal/analysis"
)

// metricsHeader matches the columns the exported class report has always
// carried.
var metricsHeader = []string{
	"student_name", "student_id", "relevant_prompts", "total_user_messages",
	"assistant_messages", "relevance_ratio", "duration_minutes", "has_feedback", "grade",
}

// WriteMetricsCSV writes one row per student plus a header.
func WriteMetricsCSV(w io.Writer, metrics []analysis.StudentMetrics) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(metricsHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, m := range metrics {
		feedback := "X"
		if m.HasFeedback {
			feedback = "O"
		}
		row := []string{
			m.StudentName,
			m.StudentID,
			strconv.Itoa(m.RelevantPrompts),
			strconv.Itoa(m.TotalUserMessages),
			strconv.Itoa(m.AssistantMessages),
			strconv.FormatFloat(m.RelevanceRatio(), 'f', 2, 64),
			strconv.FormatFloat(m.DurationMinutes, 'f', 1, 64),
			feedback,
			fmt.Sprintf("%s (%d점)", m.Band, m.Score),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteKeywordsCSV writes keyword frequencies as CSV.
func WriteKeywordsCSV(w io.Writer, keywords []analysis.KeywordCount) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"keyword", "count"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, kw := range keywords {
		if err := cw.Write([]string{kw.Word, strconv.Itoa(kw.Count)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
