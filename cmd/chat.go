package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/climatestory/storyboard/internal/chat"
	"github.com/climatestory/storyboard/internal/llm"
	"github.com/climatestory/storyboard/internal/usage"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a storyboard-drafting session for one student",
	Long: "Chat opens an interactive session. Every turn is appended to the\n" +
		"student's conversation log. Type /feedback to request storyboard\n" +
		"feedback, /quit to end the session.",
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("name", "", "Student name (required)")
	chatCmd.Flags().String("id", "", "Student ID (required)")
	chatCmd.Flags().Int("max-calls", chat.DefaultMaxCallsPerStudent, "Per-student LLM call cap")
}

func runChat(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	id, _ := cmd.Flags().GetString("id")
	if name == "" || id == "" {
		return fmt.Errorf("both --name and --id are required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openConvoStore(cmd)
	if err != nil {
		return err
	}

	events, err := openUsageStore(cmd)
	if err != nil {
		return fmt.Errorf("opening usage database: %w", err)
	}
	defer events.Close()

	chatProvider, feedbackProvider, err := buildSessionProviders(cmd, events)
	if err != nil {
		return err
	}

	cfg := chat.DefaultConfig()
	if n, _ := cmd.Flags().GetInt("max-calls"); n > 0 {
		cfg.MaxCallsPerStudent = n
	}

	session, err := chat.NewSession(store, chatProvider, feedbackProvider, chat.NewQuotaTracker(cfg.MaxCallsPerStudent), cfg, id, name)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, session.Welcome())
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			fmt.Fprintln(out, "세션을 종료합니다.")
			return nil
		case "/feedback":
			fb, err := session.Feedback(ctx)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "feedback failed: %v\n", err)
				continue
			}
			fmt.Fprintln(out, fb)
			fmt.Fprintln(out)
			continue
		}

		reply, err := session.Send(ctx, line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "send failed: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply)
		fmt.Fprintln(out)

		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

// buildSessionProviders returns the reply provider and the feedback
// provider. Feedback runs on a stronger model, overridable with
// STORYBOARD_FEEDBACK_MODEL.
func buildSessionProviders(cmd *cobra.Command, rec usage.Recorder) (llm.Provider, llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, nil, err
		}
		cfg = discovered
	}

	chatProvider, err := llm.NewProvider(cmd.Context(), cfg, rec)
	if err != nil {
		return nil, nil, err
	}

	feedbackModel := os.Getenv("STORYBOARD_FEEDBACK_MODEL")
	if feedbackModel == "" && cfg.Provider == "openai" {
		feedbackModel = "gpt-4o"
	}
	if feedbackModel == "" {
		return chatProvider, chatProvider, nil
	}
	feedbackProvider, err := llm.NewProvider(cmd.Context(), cfg.WithModel(feedbackModel), rec)
	if err != nil {
		return nil, nil, err
	}
	return chatProvider, feedbackProvider, nil
}
