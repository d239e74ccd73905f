package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) (*OpenAIProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "sk-test",
		Model:   "gpt-3.5",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	return p, server
}

func TestOpenAI_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-3.5"}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestOpenAI_ResolvesFriendlyModelNames(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"gpt-3.5", "gpt-3.5-turbo"},
		{"gpt-4o", "gpt-4o"},
		{"gpt-4.1-custom", "gpt-4.1-custom"}, // unmapped names pass through
	}
	for _, tc := range cases {
		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", Model: tc.name})
		if err != nil {
			t.Fatalf("NewOpenAIProvider(%s): %v", tc.name, err)
		}
		if p.ModelID() != tc.want {
			t.Errorf("ModelID(%s) = %q, want %q", tc.name, p.ModelID(), tc.want)
		}
	}
}

func TestOpenAI_Generate(t *testing.T) {
	var gotBody map[string]any
	p, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-3.5-turbo",
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": "장면 구성 제안입니다."},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     42,
				"completion_tokens": 12,
				"total_tokens":      54,
			},
		})
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "시스템",
		Messages:  []Message{{Role: RoleUser, Content: "질문"}},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if string(resp.Content) != "장면 구성 제안입니다." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.InputTokens != 42 || resp.Usage.OutputTokens != 12 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Errorf("stop reason = %q", resp.StopReason)
	}

	if gotBody["model"] != "gpt-3.5-turbo" {
		t.Errorf("request model = %v", gotBody["model"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("request carried %d messages, want system + user", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("first message role = %v, want system", first["role"])
	}
}

func TestOpenAI_MaxTokensStopReason(t *testing.T) {
	p, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-3.5-turbo",
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": "잘린 답"},
					"finish_reason": "length",
				},
			},
		})
	})

	resp, err := p.Generate(context.Background(), Request{MaxTokens: 4})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.StopReason != "max_tokens" {
		t.Errorf("stop reason = %q, want max_tokens", resp.StopReason)
	}
}

func TestOpenAI_RateLimit(t *testing.T) {
	p, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
	})

	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("err = %v, want ErrRateLimit", err)
	}
}

func TestOpenAI_ServerError(t *testing.T) {
	p, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "boom"}}`))
	})

	_, err := p.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	p, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model": "gpt-3.5-turbo", "choices": []}`))
	})

	_, err := p.Generate(context.Background(), Request{})
	var invResp *ErrInvalidResponse
	if !errors.As(err, &invResp) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}
