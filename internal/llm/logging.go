package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/climatestory/storyboard/internal/usage"
)

// LoggingProvider is a decorator that records every gateway request as a
// usage event.
type LoggingProvider struct {
	inner    Provider
	provider string
	rec      usage.Recorder
}

// WithLogging wraps a Provider with usage-event logging.
func WithLogging(p Provider, providerName string, rec usage.Recorder) Provider {
	return &LoggingProvider{inner: p, provider: providerName, rec: rec}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	e := usage.Event{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		e.InputTokens = resp.Usage.InputTokens
		e.OutputTokens = resp.Usage.OutputTokens
		e.Model = resp.Model
		e.ResponseBody = string(resp.Content)
	}

	if err != nil {
		e.ErrorMessage = err.Error()
	}

	// Log the event but don't fail the request if logging fails.
	if logErr := l.rec.Append(ctx, e); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request event: %v\n", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the gateway request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}
