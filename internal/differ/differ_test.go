package differ

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"jobsift/internal/history"
	"jobsift/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func posting(title, company, location, url string) model.Posting {
	return model.Posting{Title: title, Company: company, Location: location, URL: url}
}

var runDate = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestDiff_EmptyStoreAllNew(t *testing.T) {
	store := history.NewStore()
	batch := []model.Posting{
		posting("ML Engineer", "Acme", "Cairo, Egypt", "u1"),
		posting("Data Scientist", "Beta", "Dubai, UAE", "u2"),
	}

	result := Diff(batch, store, runDate, discardLogger())

	if len(result.New) != 2 || len(result.Seen) != 0 {
		t.Fatalf("got %d new / %d seen, want 2/0", len(result.New), len(result.Seen))
	}
	if store.Len() != 2 {
		t.Errorf("store should hold 2 entries, got %d", store.Len())
	}
}

func TestDiff_SecondRunAllSeen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	batch := []model.Posting{
		posting("ML Engineer", "Acme", "Cairo, Egypt", "u1"),
		posting("Data Scientist", "Beta", "Dubai, UAE", "u2"),
	}

	// Run 1 against an empty store, committed to disk.
	store1 := history.NewStore()
	r1 := Diff(batch, store1, runDate, discardLogger())
	if len(r1.New) != 2 {
		t.Fatalf("run 1: got %d new, want 2", len(r1.New))
	}
	if err := store1.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Run 2 loads the committed store; same batch, same date.
	store2, err := history.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r2 := Diff(batch, store2, runDate, discardLogger())

	if len(r2.New) != 0 {
		t.Errorf("run 2: got %d new, want 0", len(r2.New))
	}
	if len(r2.Seen) != 2 {
		t.Errorf("run 2: got %d seen, want 2", len(r2.Seen))
	}
}

func TestDiff_InBatchDuplicateCollapsed(t *testing.T) {
	store := history.NewStore()
	batch := []model.Posting{
		posting("ML Engineer", "Acme", "Cairo, Egypt", "u1"),
		posting("ML Engineer", "Acme", "Cairo, Egypt", "u1"),
	}

	result := Diff(batch, store, runDate, discardLogger())

	if got := len(result.New) + len(result.Seen); got != 1 {
		t.Errorf("duplicate should collapse to 1 classified posting, got %d", got)
	}
	if len(result.New) != 1 {
		t.Errorf("got %d new, want 1", len(result.New))
	}
	if store.Len() != 1 {
		t.Errorf("store should hold 1 entry, got %d", store.Len())
	}
}

func TestDiff_InBatchDuplicateAfterNormalization(t *testing.T) {
	store := history.NewStore()
	batch := []model.Posting{
		posting("ML Engineer", "Acme", "Cairo, Egypt", "u1"),
		posting("ML  ENGINEER", " Acme", "cairo, egypt", "U1"),
	}

	result := Diff(batch, store, runDate, discardLogger())

	if got := len(result.New) + len(result.Seen); got != 1 {
		t.Errorf("normalized duplicate should collapse, got %d classified", got)
	}
}

func TestDiff_MixedNewAndSeen(t *testing.T) {
	store := history.NewStore()
	a := posting("ML Engineer", "Acme", "Cairo, Egypt", "u1")
	b := posting("Data Scientist", "Beta", "Dubai, UAE", "u2")

	// Seed the store with A from a prior run.
	Diff([]model.Posting{a}, store, runDate.Add(-24*time.Hour), discardLogger())

	result := Diff([]model.Posting{a, b}, store, runDate, discardLogger())

	if len(result.New) != 1 || result.New[0].Title != b.Title {
		t.Errorf("expected new=[B], got %v", result.New)
	}
	if len(result.Seen) != 1 || result.Seen[0].Title != a.Title {
		t.Errorf("expected seen=[A], got %v", result.Seen)
	}
}

func TestDiff_SeenRepeatAdvancesLastSeen(t *testing.T) {
	store := history.NewStore()
	a := posting("ML Engineer", "Acme", "Cairo, Egypt", "u1")
	day1 := runDate.Add(-48 * time.Hour)

	Diff([]model.Posting{a}, store, day1, discardLogger())
	Diff([]model.Posting{a}, store, runDate, discardLogger())

	e := store.Entries()[0]
	if !e.FirstSeen.Equal(day1) {
		t.Errorf("first_seen = %v, want %v", e.FirstSeen, day1)
	}
	if !e.LastSeen.Equal(runDate) {
		t.Errorf("last_seen = %v, want %v", e.LastSeen, runDate)
	}
}

func TestDiff_MalformedPostingSkipped(t *testing.T) {
	store := history.NewStore()
	batch := []model.Posting{
		posting("ML Engineer", "Acme", "Cairo, Egypt", "u1"),
		posting("", "Ghost Corp", "Nowhere", "u2"), // empty title
		posting("Data Scientist", "Beta", "Dubai, UAE", "u3"),
		posting("AI Engineer", "   ", "Riyadh, KSA", "u4"), // whitespace company
	}

	result := Diff(batch, store, runDate, discardLogger())

	if got := len(result.New) + len(result.Seen); got != 2 {
		t.Errorf("got %d classified postings, want 2", got)
	}
	if result.Skipped != 2 {
		t.Errorf("got %d skipped, want 2", result.Skipped)
	}
	if store.Len() != 2 {
		t.Errorf("malformed postings must not enter the store, got %d entries", store.Len())
	}
}

func TestDiff_PreservesInputOrder(t *testing.T) {
	store := history.NewStore()
	titles := []string{"Role C", "Role A", "Role D", "Role B"}
	var batch []model.Posting
	for _, title := range titles {
		batch = append(batch, posting(title, "Acme", "Cairo, Egypt", ""))
	}

	result := Diff(batch, store, runDate, discardLogger())

	if len(result.New) != len(titles) {
		t.Fatalf("got %d new, want %d", len(result.New), len(titles))
	}
	for i, p := range result.New {
		if p.Title != titles[i] {
			t.Errorf("position %d: got %q, want %q", i, p.Title, titles[i])
		}
	}
}

func TestDiff_StoreGrowthMonotonic(t *testing.T) {
	store := history.NewStore()
	prev := 0
	batches := [][]model.Posting{
		{posting("A", "X", "", "")},
		{posting("A", "X", "", ""), posting("B", "Y", "", "")},
		{posting("C", "Z", "", "")},
		{},
	}

	for i, batch := range batches {
		Diff(batch, store, runDate.Add(time.Duration(i)*time.Hour), discardLogger())
		if store.Len() < prev {
			t.Fatalf("store shrank from %d to %d after batch %d", prev, store.Len(), i)
		}
		prev = store.Len()
	}
}
