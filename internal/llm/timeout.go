package llm

import (
	"context"
	"fmt"
	"time"
)

// TimeoutProvider is a decorator that bounds each Generate call. A stalled
// backend must not hang a grading batch; expiry surfaces as a gateway
// failure so judgment callers fail open and retry treats it as transient.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider with a per-call deadline. d <= 0 disables
// the bound.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	tctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.inner.Generate(tctx, req)

	// Only map expiry of our own deadline; a caller cancellation passes
	// through untouched so it still aborts retries.
	if err != nil && tctx.Err() != nil && ctx.Err() == nil {
		return nil, &ErrProviderUnavailable{
			Err: fmt.Errorf("gateway call timed out after %s", t.timeout),
		}
	}
	return resp, err
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
