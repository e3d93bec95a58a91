package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobsift/internal/classify"
)

// Limiter enforces a minimum delay between consecutive requests to the same
// backend, keyed by name.
type Limiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time
	minDelay time.Duration
}

// NewLimiter creates a limiter enforcing minDelay between consecutive
// requests to the same key.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to key.
// Returns an error if the context is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	last, ok := l.lastCall[key]
	now := time.Now()

	if !ok {
		// First request for this key — no wait needed.
		l.lastCall[key] = now
		l.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= l.minDelay {
		// Enough time has passed — proceed immediately.
		l.lastCall[key] = now
		l.mu.Unlock()
		return nil
	}

	// Need to wait for the remainder.
	remaining := l.minDelay - elapsed
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-time.After(remaining):
	}

	// Record the actual time after waiting.
	l.mu.Lock()
	l.lastCall[key] = time.Now()
	l.mu.Unlock()

	return nil
}

// Provider is a decorator that paces LLM calls before delegating to the
// wrapped provider. All providers targeting the same backend should share
// one Limiter instance.
type Provider struct {
	inner   classify.LLMProvider
	limiter *Limiter
	key     string
}

// NewProvider wraps an LLMProvider with request pacing under the given key.
func NewProvider(inner classify.LLMProvider, limiter *Limiter, key string) *Provider {
	return &Provider{
		inner:   inner,
		limiter: limiter,
		key:     key,
	}
}

// Complete waits for the limiter to allow a request, then delegates to the
// wrapped provider.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx, p.key); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, prompt)
}
