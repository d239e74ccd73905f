package relevance

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/climatestory/storyboard/internal/llm"
)

func TestSubstantive(t *testing.T) {
	cases := []struct {
		utterance string
		want      bool
	}{
		{"", false},
		{"   ", false},
		{"네", false},
		{"네네", false},
		{"안녕하세요", true}, // 5 runes, well past the minimum
		{"해수면 상승", true},
		{"  바다  ", false}, // 2 runes after trimming
		{"abc", true},
		{"ab", false},
	}
	for _, tc := range cases {
		if got := Substantive(tc.utterance); got != tc.want {
			t.Errorf("Substantive(%q) = %v, want %v", tc.utterance, got, tc.want)
		}
	}
}

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{"RELEVANT", true},
		{"relevant", true},
		{" RELEVANT.", true},
		{"OFF-TOPIC", false},
		{"off-topic", false},
		{"", false},
		{"I think this is on task", false},
	}
	for _, tc := range cases {
		if got := parseVerdict(tc.answer); got != tc.want {
			t.Errorf("parseVerdict(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func TestLLMJudge_Relevant(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("RELEVANT")},
		llm.MockResponse{Content: json.RawMessage("OFF-TOPIC")},
	)
	judge := NewLLMJudge(provider, DefaultJudgeConfig())

	got, err := judge.Relevant(context.Background(), "해수면 상승을 다루는 장면을 어떻게 구성하면 좋을까요?")
	if err != nil {
		t.Fatalf("Relevant returned error: %v", err)
	}
	if !got {
		t.Error("expected relevant verdict")
	}

	got, err = judge.Relevant(context.Background(), "점심 뭐 먹을까요?")
	if err != nil {
		t.Fatalf("Relevant returned error: %v", err)
	}
	if got {
		t.Error("expected off-topic verdict")
	}
}

func TestLLMJudge_SendsUtterance(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("RELEVANT")},
	)
	judge := NewLLMJudge(provider, DefaultJudgeConfig())

	utterance := "탄소 배출을 줄이는 만화 아이디어가 있을까요?"
	if _, err := judge.Relevant(context.Background(), utterance); err != nil {
		t.Fatalf("Relevant returned error: %v", err)
	}

	if len(provider.Calls) != 1 {
		t.Fatalf("expected 1 gateway call, got %d", len(provider.Calls))
	}
	req := provider.Calls[0]
	if req.System == "" {
		t.Error("expected a system prompt")
	}
	if len(req.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(req.Messages))
	}
	if !strings.Contains(req.Messages[0].Content, utterance) {
		t.Errorf("user message %q does not contain the utterance", req.Messages[0].Content)
	}
	if req.MaxTokens != DefaultJudgeConfig().MaxTokens {
		t.Errorf("MaxTokens = %d, want %d", req.MaxTokens, DefaultJudgeConfig().MaxTokens)
	}
}

func TestLLMJudge_FailsOpen(t *testing.T) {
	gatewayErr := &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}
	provider := llm.NewMockProvider(
		llm.MockResponse{Err: gatewayErr},
	)
	judge := NewLLMJudge(provider, DefaultJudgeConfig())

	got, err := judge.Relevant(context.Background(), "기후 위기 장면 구성 질문")
	if err == nil {
		t.Fatal("expected the gateway error to surface")
	}
	if !got {
		t.Error("gateway failure must fail open to relevant")
	}
}

// hungProvider blocks until its context is cancelled, like a stalled HTTP
// connection to the gateway.
type hungProvider struct{}

func (hungProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, &llm.ErrProviderUnavailable{Err: ctx.Err()}
}

func (hungProvider) ModelID() string { return "hung" }

func TestLLMJudge_HungGatewayFailsOpenWithinBudget(t *testing.T) {
	judge := NewLLMJudge(llm.WithTimeout(hungProvider{}, 20*time.Millisecond), DefaultJudgeConfig())

	start := time.Now()
	got, err := judge.Relevant(context.Background(), "해수면 상승 장면 구성 질문")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected the timeout to surface as a gateway error")
	}
	if !got {
		t.Error("timed-out judgment must fail open to relevant")
	}
	if elapsed > time.Second {
		t.Errorf("judgment took %v; a hung connection must not stall grading", elapsed)
	}
}

func TestStaticJudge(t *testing.T) {
	got, err := StaticJudge(true).Relevant(context.Background(), "anything")
	if err != nil || !got {
		t.Errorf("StaticJudge(true) = (%v, %v), want (true, nil)", got, err)
	}
	got, err = StaticJudge(false).Relevant(context.Background(), "anything")
	if err != nil || got {
		t.Errorf("StaticJudge(false) = (%v, %v), want (false, nil)", got, err)
	}
}
