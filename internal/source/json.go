package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"jobsift/internal/model"
)

// Ensure JSONSource implements model.PostingSource.
var _ model.PostingSource = (*JSONSource)(nil)

// JSONSource reads a scraped batch from a JSON array file. Unknown object
// fields are ignored.
type JSONSource struct {
	path string
}

// NewJSONSource creates a source reading the JSON file at path.
func NewJSONSource(path string) *JSONSource {
	return &JSONSource{path: path}
}

type jsonPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"job_url"`
	AltURL      string `json:"url"`
	Description string `json:"description"`
	Site        string `json:"site"`
	DatePosted  string `json:"date_posted"`
}

// FetchPostings parses the whole file into an ordered batch.
func (s *JSONSource) FetchPostings(_ context.Context) ([]model.Posting, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("json source %s: %w", s.path, err)
	}

	var raw []jsonPosting
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("json source %s: %w", s.path, err)
	}

	postings := make([]model.Posting, 0, len(raw))
	for _, r := range raw {
		url := r.URL
		if url == "" {
			url = r.AltURL
		}
		p := model.Posting{
			Title:       r.Title,
			Company:     r.Company,
			Location:    r.Location,
			URL:         url,
			Description: r.Description,
			Site:        r.Site,
		}
		if r.DatePosted != "" {
			if ts := parseDate(r.DatePosted); ts != nil {
				p.PostedAt = ts
			}
		}
		postings = append(postings, p)
	}
	return postings, nil
}
