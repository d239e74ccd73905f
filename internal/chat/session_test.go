package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/climatestory/storyboard/internal/convo"
	"github.com/climatestory/storyboard/internal/llm"
)

func newTestSession(t *testing.T, chat, feedback llm.Provider, limit int) (*Session, *convo.FileStore) {
	t.Helper()
	store, err := convo.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cfg := DefaultConfig()
	cfg.MaxCallsPerStudent = limit
	s, err := NewSession(store, chat, feedback, NewQuotaTracker(limit), cfg, "10301", "김민준")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, store
}

func TestNewSession_RegistersAndGreets(t *testing.T) {
	provider := llm.NewMockProvider()
	s, store := newTestSession(t, provider, provider, 10)

	students, err := store.Students()
	if err != nil {
		t.Fatalf("Students: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("got %d registered students, want 1", len(students))
	}
	if students[0].StudentID != "10301" || students[0].SessionID != s.ID() {
		t.Errorf("registry entry = %+v", students[0])
	}
	if students[0].Type != convo.TypeStudentInfo {
		t.Errorf("entry type = %q", students[0].Type)
	}

	rec, err := store.Load("10301", "김민준")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Messages) != 1 {
		t.Fatalf("got %d messages, want the welcome turn", len(rec.Messages))
	}
	if rec.Messages[0].Role != convo.RoleAssistant {
		t.Errorf("welcome role = %s", rec.Messages[0].Role)
	}
	if !strings.Contains(rec.Messages[0].Content, "김민준") {
		t.Errorf("welcome %q does not address the student", rec.Messages[0].Content)
	}
	if s.Welcome() != rec.Messages[0].Content {
		t.Error("Welcome() differs from the persisted greeting")
	}
}

func TestSend_PersistsBothTurns(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("해수면 상승 장면은 이렇게 구성해보세요.")},
	)
	s, store := newTestSession(t, provider, provider, 10)

	reply, err := s.Send(context.Background(), "첫 장면을 어떻게 구성할까요?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != "해수면 상승 장면은 이렇게 구성해보세요." {
		t.Errorf("reply = %q", reply)
	}

	rec, err := store.Load("10301", "김민준")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Messages) != 3 {
		t.Fatalf("got %d messages, want welcome + user + reply", len(rec.Messages))
	}
	if rec.Messages[1].Role != convo.RoleUser || rec.Messages[1].Content != "첫 장면을 어떻게 구성할까요?" {
		t.Errorf("user turn = %+v", rec.Messages[1])
	}
	if rec.Messages[2].Role != convo.RoleAssistant || rec.Messages[2].Content != reply {
		t.Errorf("assistant turn = %+v", rec.Messages[2])
	}

	if len(provider.Calls) != 1 {
		t.Fatalf("got %d gateway calls, want 1", len(provider.Calls))
	}
	req := provider.Calls[0]
	if req.System == "" {
		t.Error("chat request missing system prompt")
	}
	// History carries the welcome and the student's input, oldest first.
	if len(req.Messages) != 2 {
		t.Fatalf("history length = %d, want 2", len(req.Messages))
	}
	if req.Messages[1].Role != llm.RoleUser {
		t.Errorf("last history role = %s", req.Messages[1].Role)
	}
}

func TestSend_GatewayFailureDegradesToApology(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	s, store := newTestSession(t, provider, provider, 10)

	reply, err := s.Send(context.Background(), "탄소 배출 질문입니다")
	if err != nil {
		t.Fatalf("Send must not fail on a gateway error: %v", err)
	}
	if reply != apologyMessage {
		t.Errorf("reply = %q, want the apology message", reply)
	}

	rec, err := store.Load("10301", "김민준")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	last := rec.Messages[len(rec.Messages)-1]
	if last.Role != convo.RoleAssistant || last.Content != apologyMessage {
		t.Errorf("persisted turn = %+v, want the apology the student saw", last)
	}
}

func TestSend_QuotaExhaustion(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("첫 번째 답변")},
	)
	s, store := newTestSession(t, provider, provider, 1)

	if _, err := s.Send(context.Background(), "기후 위기 질문 하나"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	reply, err := s.Send(context.Background(), "기후 위기 질문 둘")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != quotaMessage {
		t.Errorf("reply = %q, want the quota message", reply)
	}
	if provider.CallCount() != 1 {
		t.Errorf("gateway called %d times past the cap, want 1", provider.CallCount())
	}

	rec, err := store.Load("10301", "김민준")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	last := rec.Messages[len(rec.Messages)-1]
	if last.Content != quotaMessage {
		t.Errorf("persisted turn = %q, want the quota message", last.Content)
	}
}

func TestFeedback(t *testing.T) {
	chatProvider := llm.NewMockProvider()
	feedbackProvider := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("주제 선정이 훌륭합니다.")},
	)
	s, store := newTestSession(t, chatProvider, feedbackProvider, 10)

	text, err := s.Feedback(context.Background())
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if text != "주제 선정이 훌륭합니다." {
		t.Errorf("feedback = %q", text)
	}

	rec, err := store.Load("10301", "김민준")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Feedback) != 1 || rec.Feedback[0].Content != text {
		t.Errorf("persisted feedback = %+v", rec.Feedback)
	}

	// Feedback runs on the stronger provider, never the chat one.
	if chatProvider.CallCount() != 0 {
		t.Errorf("chat provider called %d times for feedback", chatProvider.CallCount())
	}
	if feedbackProvider.CallCount() != 1 {
		t.Fatalf("feedback provider called %d times, want 1", feedbackProvider.CallCount())
	}
	req := feedbackProvider.Calls[0]
	last := req.Messages[len(req.Messages)-1]
	if last.Role != llm.RoleUser || !strings.Contains(last.Content, "피드백") {
		t.Errorf("feedback request does not end with the feedback prompt: %+v", last)
	}
}

func TestFeedback_GatewayFailureRecordsNothing(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	s, store := newTestSession(t, provider, provider, 10)

	if _, err := s.Feedback(context.Background()); err == nil {
		t.Fatal("expected feedback generation error")
	}

	rec, err := store.Load("10301", "김민준")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.HasFeedback() {
		t.Error("failed feedback must not be persisted")
	}
}

func TestFeedback_RepeatUsesCache(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("피드백 본문")},
	)
	s, store := newTestSession(t, provider, provider, 10)

	first, err := s.Feedback(context.Background())
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	second, err := s.Feedback(context.Background())
	if err != nil {
		t.Fatalf("repeat Feedback: %v", err)
	}
	if first != second {
		t.Errorf("repeated feedback differs: %q vs %q", first, second)
	}
	if provider.CallCount() != 1 {
		t.Errorf("gateway called %d times, want 1 (second hit the cache)", provider.CallCount())
	}

	rec, err := store.Load("10301", "김민준")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Feedback) != 2 {
		t.Errorf("got %d feedback entries, want 2", len(rec.Feedback))
	}
}
