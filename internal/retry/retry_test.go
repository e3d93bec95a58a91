package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"jobsift/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockProvider calls a function on each invocation, tracking call count.
type mockProvider struct {
	calls int
	fn    func(attempt int) (string, error)
}

func (m *mockProvider) Complete(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockProvider{fn: func(_ int) (string, error) {
		return `{"label":"relevant"}`, nil
	}}

	p := NewProvider(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"label":"relevant"}` {
		t.Fatalf("unexpected response: %q", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockProvider{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return "ok", nil
	}}

	p := NewProvider(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected response: %q", got)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockProvider{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 401, Err: errors.New("unauthorized")}
	}}

	p := NewProvider(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := p.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry on 4xx), got %d", mock.calls)
	}
}

func TestRetry_ExhaustsRetriesOn429(t *testing.T) {
	mock := &mockProvider{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 429}
	}}

	p := NewProvider(mock, 2, 5*time.Millisecond, discardLogger())
	_, err := p.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_HonorsRetryAfter(t *testing.T) {
	mock := &mockProvider{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 429, RetryAfter: 50 * time.Millisecond}
		}
		return "ok", nil
	}}

	p := NewProvider(mock, 2, 1*time.Millisecond, discardLogger())
	start := time.Now()
	_, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected Retry-After delay of ~50ms, elapsed %v", elapsed)
	}
}

func TestRetry_DoesNotRetryOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := &mockProvider{fn: func(_ int) (string, error) {
		cancel()
		return "", ctx.Err()
	}}

	p := NewProvider(mock, 3, 10*time.Millisecond, discardLogger())
	_, err := p.Complete(ctx, "prompt")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry on cancellation), got %d", mock.calls)
	}
}
