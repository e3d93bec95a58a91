package history

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"jobsift/internal/model"
)

// Lock is an exclusive run lock over a history file. The store assumes a
// single writer per run; overlapping scheduled runs must fail fast rather
// than interleave writes.
type Lock struct {
	path string
}

// LockPath returns the lock file path for a history file.
func LockPath(historyPath string) string {
	return historyPath + ".lock"
}

// Acquire creates the lock file with O_EXCL. If it already exists, another
// run is in progress and a ConcurrentRunError is returned.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil, &model.ConcurrentRunError{LockPath: path}
	}
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}

	// Record the holder's pid for operator diagnostics of stale locks.
	if _, err := f.WriteString(strconv.Itoa(os.Getpid()) + "\n"); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("releasing lock %s: %w", l.path, err)
	}
	return nil
}
