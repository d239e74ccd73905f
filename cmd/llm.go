package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/climatestory/storyboard/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM call log",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent gateway calls",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openUsageStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		events, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "no gateway calls recorded")
			return nil
		}
		fmt.Fprintf(out, "%-6s %-20s %-10s %-22s %-12s %8s %8s %8s  %s\n",
			"ID", "TIME", "PROVIDER", "MODEL", "PURPOSE", "IN", "OUT", "MS", "OK")
		for _, e := range events {
			ok := "yes"
			if !e.Success {
				ok = "no"
			}
			fmt.Fprintf(out, "%-6d %-20s %-10s %-22s %-12s %8d %8d %8d  %s\n",
				e.ID, e.Timestamp.Format(time.DateTime), e.Provider, e.Model,
				e.Purpose, e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid event id %q", args[0])
		}
		store, err := openUsageStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		e, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("no event with id %d", id)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Event %d  %s\n", e.ID, e.Timestamp.Format(time.DateTime))
		fmt.Fprintf(out, "Provider: %s  Model: %s  Purpose: %s\n", e.Provider, e.Model, e.Purpose)
		fmt.Fprintf(out, "Tokens: %d in / %d out  Latency: %dms\n", e.InputTokens, e.OutputTokens, e.LatencyMs)
		if !e.Success {
			fmt.Fprintf(out, "Error: %s\n", e.ErrorMessage)
		}
		fmt.Fprintf(out, "\n--- request ---\n%s\n", e.RequestBody)
		fmt.Fprintf(out, "\n--- response ---\n%s\n", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate token usage and estimated cost",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openUsageStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		byPurpose, err := store.UsageByPurpose(cmd.Context())
		if err != nil {
			return err
		}
		byModel, err := store.UsageByModel(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "By purpose:")
		fmt.Fprintf(out, "  %-14s %8s %12s %12s %10s\n", "PURPOSE", "CALLS", "IN TOKENS", "OUT TOKENS", "AVG MS")
		for _, u := range byPurpose {
			fmt.Fprintf(out, "  %-14s %8d %12d %12d %10d\n",
				u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "By model:")
		fmt.Fprintf(out, "  %-24s %8s %12s %12s %10s\n", "MODEL", "CALLS", "IN TOKENS", "OUT TOKENS", "EST COST")
		var total float64
		for _, u := range byModel {
			cost := "n/a"
			if c := llm.LookupCost(u.Model); c != nil {
				usd := c.Cost(u.InputTokens, u.OutputTokens)
				total += usd
				cost = fmt.Sprintf("$%.4f", usd)
			}
			fmt.Fprintf(out, "  %-24s %8d %12d %12d %10s\n",
				u.Model, u.Calls, u.InputTokens, u.OutputTokens, cost)
		}
		if total > 0 {
			fmt.Fprintf(out, "\n  Estimated total: $%.4f\n", total)
		}
		return nil
	},
}

func init() {
	llmListCmd.Flags().Int("limit", 20, "Maximum number of events to show")
	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
