package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestCSVSource_ParsesRows(t *testing.T) {
	csvData := `title,company,location,job_url,description,site,date_posted
ML Engineer,Acme,"Cairo, Egypt",https://jobs.acme.com/1,Build models,linkedin,2026-08-29
Data Scientist,Beta,"Dubai, UAE",,Long description here,indeed,
`
	src := NewCSVSource(writeFile(t, "jobs.csv", csvData))

	postings, err := src.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("got %d postings, want 2", len(postings))
	}

	first := postings[0]
	if first.Title != "ML Engineer" || first.Company != "Acme" || first.Location != "Cairo, Egypt" {
		t.Errorf("unexpected first posting: %+v", first)
	}
	if first.URL != "https://jobs.acme.com/1" || first.Site != "linkedin" {
		t.Errorf("unexpected url/site: %+v", first)
	}
	if first.PostedAt == nil || !first.PostedAt.Equal(time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected posted_at: %v", first.PostedAt)
	}

	// Missing url and date are allowed.
	second := postings[1]
	if second.URL != "" {
		t.Errorf("expected empty url, got %q", second.URL)
	}
	if second.PostedAt != nil {
		t.Errorf("expected nil posted_at, got %v", second.PostedAt)
	}
}

func TestCSVSource_IgnoresUnknownColumns(t *testing.T) {
	csvData := `search_term,title,company,location,salary_min,weird_extra
ai engineer,AI Engineer,Gamma,Remote,50000,x
`
	src := NewCSVSource(writeFile(t, "jobs.csv", csvData))

	postings, err := src.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("got %d postings, want 1", len(postings))
	}
	if postings[0].Title != "AI Engineer" || postings[0].Company != "Gamma" {
		t.Errorf("unexpected posting: %+v", postings[0])
	}
}

func TestCSVSource_PreservesRowOrder(t *testing.T) {
	csvData := `title,company
Role C,X
Role A,Y
Role B,Z
`
	src := NewCSVSource(writeFile(t, "jobs.csv", csvData))

	postings, err := src.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	want := []string{"Role C", "Role A", "Role B"}
	for i, title := range want {
		if postings[i].Title != title {
			t.Errorf("row %d: got %q, want %q", i, postings[i].Title, title)
		}
	}
}

func TestCSVSource_EmptyFile(t *testing.T) {
	src := NewCSVSource(writeFile(t, "jobs.csv", ""))

	postings, err := src.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if len(postings) != 0 {
		t.Errorf("got %d postings from empty file, want 0", len(postings))
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"))

	if _, err := src.FetchPostings(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestJSONSource_ParsesArray(t *testing.T) {
	jsonData := `[
		{"title": "ML Engineer", "company": "Acme", "location": "Cairo, Egypt", "job_url": "u1", "site": "linkedin", "unknown_field": 42},
		{"title": "Data Scientist", "company": "Beta", "url": "u2", "date_posted": "2026-08-28T10:00:00Z"}
	]`
	src := NewJSONSource(writeFile(t, "jobs.json", jsonData))

	postings, err := src.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("got %d postings, want 2", len(postings))
	}
	if postings[0].URL != "u1" {
		t.Errorf("job_url not mapped: %+v", postings[0])
	}
	if postings[1].URL != "u2" {
		t.Errorf("url fallback not mapped: %+v", postings[1])
	}
	if postings[1].PostedAt == nil {
		t.Error("date_posted not parsed")
	}
}

func TestJSONSource_MalformedFile(t *testing.T) {
	src := NewJSONSource(writeFile(t, "jobs.json", "{broken"))

	if _, err := src.FetchPostings(context.Background()); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
