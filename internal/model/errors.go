package model

import (
	"fmt"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// CorruptHistoryError means the history file exists but cannot be parsed.
// Fatal: deduplication state cannot be trusted, so the run must not proceed
// with an assumed-empty history.
type CorruptHistoryError struct {
	Path string
	Err  error
}

func (e *CorruptHistoryError) Error() string {
	return fmt.Sprintf("corrupt history file %s: %v", e.Path, e.Err)
}

func (e *CorruptHistoryError) Unwrap() error {
	return e.Err
}

// InvalidPostingError marks a single malformed posting (missing title or
// company). Recovered locally: the record is skipped, the run continues.
type InvalidPostingError struct {
	Index  int // position in the batch
	Reason string
}

func (e *InvalidPostingError) Error() string {
	return fmt.Sprintf("invalid posting at index %d: %s", e.Index, e.Reason)
}

// PersistenceError means a history save failed. Fatal, but the previous
// on-disk history is guaranteed untouched.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting history to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ConcurrentRunError means another run holds the history lock. Fatal; the
// run aborts before any mutation.
type ConcurrentRunError struct {
	LockPath string
}

func (e *ConcurrentRunError) Error() string {
	return fmt.Sprintf("another run holds the lock %s", e.LockPath)
}
