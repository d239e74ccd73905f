package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/climatestory/storyboard/internal/analysis"
	"github.com/climatestory/storyboard/internal/llm"
	"github.com/climatestory/storyboard/internal/relevance"
	"github.com/climatestory/storyboard/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Grade every student's conversation log",
	Long: "Analyze loads all conversation records, judges each substantive\n" +
		"student prompt for storyboard relevance, and prints per-student\n" +
		"metrics with rubric grades plus class-wide statistics.",
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("csv", "", "Write per-student metrics to this CSV file")
	analyzeCmd.Flags().String("keywords-csv", "", "Write keyword frequencies to this CSV file")
	analyzeCmd.Flags().Int("keywords", 20, "Number of top keywords to report (0 disables)")
	analyzeCmd.Flags().Bool("no-llm", false, "Skip the LLM judge and count every substantive prompt as relevant")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openConvoStore(cmd)
	if err != nil {
		return err
	}

	records, malformed, err := store.LoadAll()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(records) == 0 && len(malformed) == 0 {
		fmt.Fprintln(out, "no conversation records found in", store.Dir())
		return nil
	}

	judge, cleanup, err := buildJudge(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := analysis.NewRunner(analysis.NewAggregator(judge))
	bar := report.ProgressBar{Label: "analyzing", Width: 30}
	metrics, summary, runErr := runner.Run(ctx, records, func(current, total int) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\r%s", bar.Render(current, total))
		if current == total {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	})
	if runErr != nil {
		// Partial results from a cancelled run are still worth showing.
		fmt.Fprintf(cmd.ErrOrStderr(), "\nanalysis interrupted: %v\n", runErr)
	}

	fmt.Fprintln(out, report.RenderMetricsTable(metrics))
	fmt.Fprintln(out, report.RenderSummary(summary))
	fmt.Fprintln(out, report.RenderGradeDistribution(metrics))

	if n, _ := cmd.Flags().GetInt("keywords"); n > 0 {
		keywords := analysis.TopKeywords(records, n)
		fmt.Fprintln(out, report.RenderKeywords(keywords))
		if path, _ := cmd.Flags().GetString("keywords-csv"); path != "" {
			if err := writeCSVFile(path, func(f *os.File) error {
				return report.WriteKeywordsCSV(f, keywords)
			}); err != nil {
				return err
			}
			fmt.Fprintf(out, "keywords written to %s\n", path)
		}
	}

	if len(malformed) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), report.RenderMalformed(malformed))
	}

	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		if err := writeCSVFile(path, func(f *os.File) error {
			return report.WriteMetricsCSV(f, metrics)
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "metrics written to %s\n", path)
	}
	return runErr
}

// buildJudge returns the relevance judge and a cleanup func. Without a
// configured provider (or with --no-llm) every substantive prompt counts
// as relevant, so a classroom without API keys still gets grades.
func buildJudge(cmd *cobra.Command) (relevance.Judge, func(), error) {
	if skip, _ := cmd.Flags().GetBool("no-llm"); skip {
		return relevance.StaticJudge(true), func() {}, nil
	}

	events, err := openUsageStore(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("opening usage database: %w", err)
	}

	provider, err := llm.NewProviderFromEnv(cmd.Context(), events)
	if err != nil {
		events.Close()
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no LLM provider configured (%v); counting all substantive prompts as relevant\n", err)
		return relevance.StaticJudge(true), func() {}, nil
	}

	judge := relevance.WithCache(relevance.NewLLMJudge(provider, relevance.DefaultJudgeConfig()))
	return judge, func() { events.Close() }, nil
}

func writeCSVFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
