package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/climatestory/storyboard/internal/convo"
	"github.com/climatestory/storyboard/internal/usage"
)

var rootCmd = &cobra.Command{
	Use:   "storyboard",
	Short: "Climate-crisis storyboard assistant for the classroom",
	Long: "Storyboard helps students draft climate-crisis storyboards in a chat\n" +
		"session, keeps a per-student conversation log, and gives teachers\n" +
		"aggregate analysis with rubric grades.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data", "", "Data directory for conversation logs (overrides STORYBOARD_DATA)")
	rootCmd.PersistentFlags().String("db", "", "Path to the LLM usage database (overrides STORYBOARD_DB)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(studentsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDataDir returns the conversation data directory using the --data
// flag, then STORYBOARD_DATA, then ./data, the layout the classroom app
// has always used.
func resolveDataDir(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("data"); p != "" {
		return p
	}
	if p := os.Getenv("STORYBOARD_DATA"); p != "" {
		return p
	}
	return "data"
}

// openConvoStore opens the conversation store for the resolved data dir.
func openConvoStore(cmd *cobra.Command) (*convo.FileStore, error) {
	return convo.Open(resolveDataDir(cmd))
}

// openUsageStore opens the LLM event database using the --db flag or the
// default path.
func openUsageStore(cmd *cobra.Command) (*usage.Store, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := usage.EnsureDir(p); err != nil {
			return nil, err
		}
		return usage.Open(p)
	}
	p, err := usage.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return usage.Open(p)
}
