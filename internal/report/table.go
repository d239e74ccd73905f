package report

import (
	"fmt"
	"strings"

	"github.com/climatestory/storyboard/internal/analysis"
	"github.com/climatestory/storyboard/internal/convo"
)

const tableRule = 100

// RenderMetricsTable renders per-student metrics in the order computed.
func RenderMetricsTable(metrics []analysis.StudentMetrics) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("학생별 프롬프트 분석"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-14s  %-10s  %8s  %8s  %8s  %7s  %9s  %8s  %5s",
		"학생명", "학번", "관련", "학생 메시지", "AI 응답", "관련율", "대화(분)", "피드백", "등급")))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", tableRule)))
	b.WriteString("\n")

	for _, m := range metrics {
		feedback := "X"
		if m.HasFeedback {
			feedback = "O"
		}
		row := fmt.Sprintf("%-14s  %-10s  %8d  %8d  %8d  %6.0f%%  %9.1f  %8s  ",
			truncate(m.StudentName, 14),
			truncate(m.StudentID, 10),
			m.RelevantPrompts,
			m.TotalUserMessages,
			m.AssistantMessages,
			m.RelevanceRatio()*100,
			m.DurationMinutes,
			feedback,
		)
		b.WriteString(cellStyle.Render(row))
		b.WriteString(bandStyle(string(m.Band)).Render(fmt.Sprintf("%s (%d점)", m.Band, m.Score)))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderSummary renders class-wide statistics.
func RenderSummary(s analysis.Summary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("전체 통계"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d\n", dimStyle.Render("학생 수:"), s.Students)
	fmt.Fprintf(&b, "%s %d (%s %d)\n",
		dimStyle.Render("학생 메시지 수:"), s.TotalUserMessages,
		dimStyle.Render("관련 프롬프트"), s.TotalRelevantPrompts)
	fmt.Fprintf(&b, "%s %.1f\n", dimStyle.Render("평균 관련 프롬프트:"), s.MeanRelevantPrompts)
	fmt.Fprintf(&b, "%s %.1f\n", dimStyle.Render("평균 학생 메시지:"), s.MeanUserMessages)
	fmt.Fprintf(&b, "%s %.0f%%\n", dimStyle.Render("전체 관련율:"), s.RelevanceRate*100)

	return b.String()
}

// RenderGradeDistribution renders how many students landed in each band.
func RenderGradeDistribution(metrics []analysis.StudentMetrics) string {
	counts := make(map[analysis.Band]int)
	for _, m := range metrics {
		counts[m.Band]++
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("등급 분포"))
	b.WriteString("\n")
	for _, band := range []analysis.Band{analysis.BandA, analysis.BandB, analysis.BandC, analysis.BandD, analysis.BandE} {
		n := counts[band]
		bar := strings.Repeat("█", n)
		fmt.Fprintf(&b, "%s  %s %d\n", bandStyle(string(band)).Render(string(band)), bar, n)
	}
	return b.String()
}

// RenderKeywords renders the most frequent keywords from student turns.
func RenderKeywords(keywords []analysis.KeywordCount) string {
	if len(keywords) == 0 {
		return dimStyle.Render("분석할 키워드가 없습니다.") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("자주 등장하는 키워드"))
	b.WriteString("\n")
	for _, kw := range keywords {
		fmt.Fprintf(&b, "%-20s  %d\n", truncate(kw.Word, 20), kw.Count)
	}
	return b.String()
}

// RenderMalformed lists records skipped during a batch run.
func RenderMalformed(malformed []*convo.MalformedRecordError) string {
	if len(malformed) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(warnStyle.Render(fmt.Sprintf("건너뛴 파일 %d개:", len(malformed))))
	b.WriteString("\n")
	for _, m := range malformed {
		fmt.Fprintf(&b, "  %s: %v\n", m.Path, m.Err)
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
