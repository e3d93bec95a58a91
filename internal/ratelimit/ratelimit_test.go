package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_SameKey_EnforcesMinDelay(t *testing.T) {
	limiter := NewLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentKeys_NoCrossBlocking(t *testing.T) {
	limiter := NewLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Fatalf("openai wait: %v", err)
	}

	// Immediately call for a different key — should NOT block.
	start := time.Now()
	if err := limiter.Wait(ctx, "local"); err != nil {
		t.Fatalf("local wait: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Errorf("expected local wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewLimiter(5 * time.Second) // long delay
	ctx := context.Background()

	// First call to seed the last-call time.
	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(cancelCtx, "openai"); err == nil {
		t.Fatal("expected error when context expires during wait")
	}
}

type countingProvider struct {
	calls int
}

func (c *countingProvider) Complete(_ context.Context, _ string) (string, error) {
	c.calls++
	return "ok", nil
}

func TestProvider_PacesCalls(t *testing.T) {
	limiter := NewLimiter(80 * time.Millisecond)
	inner := &countingProvider{}
	p := NewProvider(inner, limiter, "openai")
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := p.Complete(ctx, "prompt"); err != nil {
			t.Fatalf("Complete %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	if inner.calls != 3 {
		t.Fatalf("expected 3 inner calls, got %d", inner.calls)
	}
	// Two enforced gaps of ~80ms each.
	if elapsed < 120*time.Millisecond {
		t.Errorf("expected >= 120ms for 3 paced calls, got %v", elapsed)
	}
}
