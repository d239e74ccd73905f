package llm

import (
	"context"
	"fmt"

	"github.com/climatestory/storyboard/internal/usage"
)

// NewProvider creates a Provider from configuration, wrapped with retry and
// usage-logging middleware. rec may be nil when no event log is available.
func NewProvider(ctx context.Context, cfg Config, rec usage.Recorder) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Middleware order, outermost first: caller → retry → timeout →
	// logging → base. Logging inside retry records every attempt, not just
	// the last; timeout inside retry gives each attempt its own budget.
	wrapped := Provider(base)
	if rec != nil {
		wrapped = WithLogging(wrapped, cfg.Provider, rec)
	}
	wrapped = WithTimeout(wrapped, cfg.Timeout)
	return WithRetry(wrapped, cfg.Retry), nil
}

// NewProviderFromEnv builds a provider from STORYBOARD_* env vars, falling
// back to discovery of standard API key vars.
func NewProviderFromEnv(ctx context.Context, rec usage.Recorder) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	return NewProvider(ctx, cfg, rec)
}
