package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"jobsift/internal/model"
)

// Entry is the durable record for one fingerprint. FirstSeen is immutable
// once set; LastSeen advances every time the fingerprint reappears. Entries
// are never removed automatically.
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// Store is the in-memory mapping from fingerprint to Entry. It is loaded at
// run start, mutated during the run, and written back atomically at run end.
// Not safe for concurrent use; the pipeline is a single sequential pass.
type Store struct {
	entries map[string]Entry
}

// fileSchema is the on-disk shape. Extra fields in the file are ignored on
// load, so older binaries keep working against files written by newer ones.
type fileSchema struct {
	Entries map[string]Entry `json:"entries"`
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Load reads the history file at path. A missing file is the first-run case
// and yields an empty Store. A file that exists but cannot be parsed yields
// a CorruptHistoryError: the run must not proceed with an assumed-empty
// history, or every posting would be spuriously re-flagged as new. Other read
// failures (permissions, I/O) are fatal too, but reported as plain read
// errors since the file contents may be perfectly valid.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history %s: %w", path, err)
	}

	var file fileSchema
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &model.CorruptHistoryError{Path: path, Err: err}
	}

	s := NewStore()
	for fp, e := range file.Entries {
		// The map key is authoritative; tolerate files where the inline
		// fingerprint field is missing.
		e.Fingerprint = fp
		s.entries[fp] = e
	}
	return s, nil
}

// Contains reports whether the fingerprint has been observed before.
func (s *Store) Contains(fingerprint string) bool {
	_, ok := s.entries[fingerprint]
	return ok
}

// Record observes a fingerprint at the given date. Unseen fingerprints get a
// fresh Entry with first_seen = last_seen = observed. Seen fingerprints keep
// their first_seen and advance last_seen monotonically: the max-guard
// protects against out-of-order batches within a run.
func (s *Store) Record(fingerprint string, observed time.Time) {
	e, ok := s.entries[fingerprint]
	if !ok {
		s.entries[fingerprint] = Entry{
			Fingerprint: fingerprint,
			FirstSeen:   observed,
			LastSeen:    observed,
		}
		return
	}
	if observed.After(e.LastSeen) {
		e.LastSeen = observed
	}
	s.entries[fingerprint] = e
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns all entries sorted by first_seen, oldest first. Ties break
// on fingerprint so the order is stable.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].FirstSeen.Before(out[j].FirstSeen)
		}
		return out[i].Fingerprint < out[j].Fingerprint
	})
	return out
}

// Save writes the full mapping to path using write-to-temp-then-rename, so a
// partially written file is never mistaken for a valid history. Any failure
// yields a PersistenceError and leaves the previous file intact.
func (s *Store) Save(path string) error {
	file := fileSchema{Entries: s.entries}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &model.PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &model.PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &model.PersistenceError{Path: path, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &model.PersistenceError{Path: path, Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}
