package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"jobsift/internal/differ"
	"jobsift/internal/model"
)

// Writer renders run artifacts into a report directory: new_jobs.csv (only
// when there are new postings), all_jobs.csv, and summary.json.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer targeting dir. The directory is created on the
// first Write.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

var csvHeader = []string{"title", "company", "location", "url", "description", "site", "posted_at", "label"}

// Staged holds fully rendered run artifacts in a hidden staging directory.
// Nothing is visible in the report directory until Commit.
type Staged struct {
	stagingDir string
	targetDir  string
	files      []string
	summary    Summary
	logger     *slog.Logger
}

// Stage renders all artifacts for one run into a staging directory. Row order
// follows the diff result (new first in all_jobs.csv), so reports are
// reproducible run to run.
func (w *Writer) Stage(result differ.RunResult, summary Summary) (*Staged, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report dir: %w", err)
	}
	stagingDir, err := os.MkdirTemp(w.dir, ".staging-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging dir: %w", err)
	}

	s := &Staged{
		stagingDir: stagingDir,
		targetDir:  w.dir,
		summary:    summary,
		logger:     w.logger,
	}

	if len(result.New) > 0 {
		if err := writeCSV(filepath.Join(stagingDir, "new_jobs.csv"), result.New); err != nil {
			s.Discard()
			return nil, err
		}
		s.files = append(s.files, "new_jobs.csv")
	}

	all := make([]model.Posting, 0, len(result.New)+len(result.Seen))
	all = append(all, result.New...)
	all = append(all, result.Seen...)
	if err := writeCSV(filepath.Join(stagingDir, "all_jobs.csv"), all); err != nil {
		s.Discard()
		return nil, err
	}
	s.files = append(s.files, "all_jobs.csv")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		s.Discard()
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	summaryPath := filepath.Join(stagingDir, "summary.json")
	if err := os.WriteFile(summaryPath, data, 0o644); err != nil {
		s.Discard()
		return nil, fmt.Errorf("writing %s: %w", summaryPath, err)
	}
	s.files = append(s.files, "summary.json")

	return s, nil
}

// Commit renames the staged artifacts into the report directory and removes
// the staging directory.
func (s *Staged) Commit() error {
	for _, name := range s.files {
		if err := os.Rename(filepath.Join(s.stagingDir, name), filepath.Join(s.targetDir, name)); err != nil {
			return fmt.Errorf("publishing %s: %w", name, err)
		}
	}
	os.RemoveAll(s.stagingDir)

	s.logger.Info("wrote run report",
		"dir", s.targetDir,
		"total", s.summary.TotalJobsCount,
		"new", s.summary.NewJobsCount,
		"skipped", s.summary.SkippedCount,
	)
	return nil
}

// Discard removes the staging directory without publishing anything. Safe to
// call after Commit.
func (s *Staged) Discard() {
	os.RemoveAll(s.stagingDir)
}

// Write renders and publishes all artifacts in one step.
func (w *Writer) Write(result differ.RunResult, summary Summary) error {
	staged, err := w.Stage(result, summary)
	if err != nil {
		return err
	}
	return staged.Commit()
}

func writeCSV(path string, postings []model.Posting) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, p := range postings {
		postedAt := ""
		if p.PostedAt != nil {
			postedAt = p.PostedAt.Format(time.RFC3339)
		}
		row := []string{p.Title, p.Company, p.Location, p.URL, p.Description, p.Site, postedAt, string(p.Label)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteGitHubOutput appends the contract keys (new_jobs_count,
// total_jobs_count, has_new_jobs) to the GITHUB_OUTPUT file so a CI workflow
// can branch on the result.
func WriteGitHubOutput(path string, summary Summary) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening github output %s: %w", path, err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "new_jobs_count=%d\ntotal_jobs_count=%d\nhas_new_jobs=%t\n",
		summary.NewJobsCount, summary.TotalJobsCount, summary.HasNewJobs)
	if err != nil {
		return fmt.Errorf("writing github output: %w", err)
	}
	return nil
}
