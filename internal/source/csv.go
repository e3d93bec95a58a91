package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"jobsift/internal/model"
)

// Ensure CSVSource implements model.PostingSource.
var _ model.PostingSource = (*CSVSource)(nil)

// CSVSource reads a scraped batch from a CSV file, the hand-off format the
// external scraper writes (jobs_raw.csv). The first row is a header; columns
// are matched by name and unknown columns are ignored, so scraper-side schema
// additions never break a run.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source reading the CSV file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Column aliases accepted for each posting field. The scraper ecosystem is
// not consistent about naming (job_url vs url, site vs source).
var csvColumns = map[string]string{
	"title":       "title",
	"company":     "company",
	"location":    "location",
	"job_url":     "url",
	"url":         "url",
	"description": "description",
	"site":        "site",
	"source":      "site",
	"date_posted": "posted_at",
	"posted_at":   "posted_at",
}

// FetchPostings parses the whole file into an ordered batch. Row order is
// preserved; it drives the diff and report order downstream.
func (s *CSVSource) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("csv source %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are tolerated, missing cells read as empty

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv source %s: reading header: %w", s.path, err)
	}

	// Map field name -> column index for the columns we recognize.
	index := make(map[string]int)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if field, ok := csvColumns[name]; ok {
			if _, taken := index[field]; !taken {
				index[field] = i
			}
		}
	}

	var postings []model.Posting
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("csv source %s: %w", s.path, err)
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv source %s: %w", s.path, err)
		}

		cell := func(field string) string {
			i, ok := index[field]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		p := model.Posting{
			Title:       cell("title"),
			Company:     cell("company"),
			Location:    cell("location"),
			URL:         cell("url"),
			Description: cell("description"),
			Site:        cell("site"),
		}
		if raw := cell("posted_at"); raw != "" {
			if ts := parseDate(raw); ts != nil {
				p.PostedAt = ts
			}
		}
		postings = append(postings, p)
	}

	return postings, nil
}

// parseDate tries the timestamp formats scrapers actually emit. Returns nil
// when none match; an unparseable date never drops the posting.
func parseDate(raw string) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
