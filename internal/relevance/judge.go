package relevance

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/climatestory/storyboard/internal/llm"
)

// MinUtteranceRunes is the minimum trimmed length for an utterance to be
// worth classifying. Shorter turns are treated as non-substantive without
// spending a gateway call.
const MinUtteranceRunes = 3

// Substantive reports whether an utterance is long enough to classify.
func Substantive(utterance string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(utterance)) >= MinUtteranceRunes
}

// Judge decides whether a student utterance is on-task for the storyboard
// assignment.
//
// Implementations must fail open: when the judgment cannot be performed the
// result is true, optionally alongside the error that forced the default.
// Penalizing a student because the classifier was unavailable is worse than
// letting a borderline prompt count.
type Judge interface {
	Relevant(ctx context.Context, utterance string) (bool, error)
}

// JudgeConfig holds tunables for the LLM judge.
type JudgeConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultJudgeConfig returns the defaults used in production. The judgment
// is a single token, so the token budget stays tiny.
func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{
		MaxTokens:   8,
		Temperature: 0,
	}
}

// LLMJudge classifies utterances through the completion gateway.
type LLMJudge struct {
	provider llm.Provider
	cfg      JudgeConfig
}

// NewLLMJudge creates a gateway-backed judge.
func NewLLMJudge(provider llm.Provider, cfg JudgeConfig) *LLMJudge {
	return &LLMJudge{provider: provider, cfg: cfg}
}

// Relevant asks the gateway for a one-token verdict.
//
// On any gateway failure it returns (true, err): the fail-open default plus
// the error so callers can log the degradation.
func (j *LLMJudge) Relevant(ctx context.Context, utterance string) (bool, error) {
	ctx = llm.WithPurpose(ctx, "relevance")

	resp, err := j.provider.Generate(ctx, llm.Request{
		System: judgeSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildJudgeMessage(utterance)},
		},
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: j.cfg.Temperature,
	})
	if err != nil {
		return true, err
	}

	return parseVerdict(string(resp.Content)), nil
}

// parseVerdict interprets the gateway's answer by checking for the relevant
// token. Anything else, including an empty or rambling answer, counts as
// off-topic.
func parseVerdict(answer string) bool {
	return strings.Contains(strings.ToUpper(answer), tokenRelevant)
}

// StaticJudge always returns a fixed verdict. Used when no gateway is
// configured (degraded mode) and in tests.
type StaticJudge bool

func (s StaticJudge) Relevant(context.Context, string) (bool, error) {
	return bool(s), nil
}
