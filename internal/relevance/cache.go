package relevance

import (
	"context"
	"sync"
)

// CachedJudge memoizes judgments by utterance content. Conversation turns
// are immutable once stored, so entries never need invalidation.
//
// Fail-open defaults are not cached: a verdict produced because the gateway
// was down should be retried next time, not frozen forever.
type CachedJudge struct {
	inner Judge

	mu sync.RWMutex
	m  map[string]bool
}

// WithCache wraps a Judge with a content-addressed cache.
func WithCache(inner Judge) *CachedJudge {
	return &CachedJudge{inner: inner, m: make(map[string]bool)}
}

func (c *CachedJudge) Relevant(ctx context.Context, utterance string) (bool, error) {
	c.mu.RLock()
	verdict, ok := c.m[utterance]
	c.mu.RUnlock()
	if ok {
		return verdict, nil
	}

	verdict, err := c.inner.Relevant(ctx, utterance)
	if err != nil {
		return verdict, err
	}

	c.mu.Lock()
	c.m[utterance] = verdict
	c.mu.Unlock()
	return verdict, nil
}

// Len returns the number of cached judgments.
func (c *CachedJudge) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
