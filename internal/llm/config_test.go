package llm

import "testing"

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORYBOARD_LLM_PROVIDER",
		"STORYBOARD_OPENAI_API_KEY", "STORYBOARD_OPENAI_MODEL", "STORYBOARD_OPENAI_BASE_URL",
		"STORYBOARD_ANTHROPIC_API_KEY", "STORYBOARD_ANTHROPIC_MODEL",
		"STORYBOARD_GEMINI_API_KEY", "STORYBOARD_GEMINI_MODEL",
		"STORYBOARD_OPENROUTER_API_KEY", "STORYBOARD_OPENROUTER_MODEL",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.OpenAI.Model != "gpt-3.5" {
		t.Errorf("OpenAI.Model = %q, want gpt-3.5", cfg.OpenAI.Model)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Retry.MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("STORYBOARD_LLM_PROVIDER", "anthropic")
	t.Setenv("STORYBOARD_ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("STORYBOARD_ANTHROPIC_MODEL", "claude-sonnet")

	cfg := ConfigFromEnv()
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.Provider)
	}
	if cfg.Anthropic.APIKey != "sk-ant-test" {
		t.Errorf("APIKey = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Anthropic.Model != "claude-sonnet" {
		t.Errorf("Model = %q", cfg.Anthropic.Model)
	}
	// Unrelated defaults stay intact.
	if cfg.OpenAI.Model != "gpt-3.5" {
		t.Errorf("OpenAI.Model = %q, want default", cfg.OpenAI.Model)
	}
}

func TestDiscoverConfig_PriorityOrder(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected discovery to succeed")
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai (first in priority order)", cfg.Provider)
	}
	if cfg.OpenAI.APIKey != "sk-openai" {
		t.Errorf("APIKey = %q", cfg.OpenAI.APIKey)
	}
}

func TestDiscoverConfig_NoKeys(t *testing.T) {
	clearKeyEnv(t)
	if _, ok := DiscoverConfig(); ok {
		t.Error("discovery succeeded with no keys set")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing OpenAI key")
	}

	cfg.OpenAI.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate with key: %v", err)
	}

	cfg.Provider = "something-else"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}

	cfg.Provider = "mock"
	if err := cfg.Validate(); err != nil {
		t.Errorf("mock provider needs no key, got %v", err)
	}
}

func TestConfigWithModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "openai"

	derived := cfg.WithModel("gpt-4o")
	if derived.OpenAI.Model != "gpt-4o" {
		t.Errorf("derived model = %q, want gpt-4o", derived.OpenAI.Model)
	}
	if cfg.OpenAI.Model != "gpt-3.5" {
		t.Errorf("original mutated to %q", cfg.OpenAI.Model)
	}

	cfg.Provider = "anthropic"
	derived = cfg.WithModel("claude-sonnet")
	if derived.Anthropic.Model != "claude-sonnet" {
		t.Errorf("anthropic derived model = %q", derived.Anthropic.Model)
	}
	if derived.OpenAI.Model != "gpt-3.5" {
		t.Errorf("inactive provider model changed to %q", derived.OpenAI.Model)
	}
}
