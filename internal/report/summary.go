package report

import (
	"time"

	"jobsift/internal/differ"
)

// Summary is the aggregate an orchestrating caller is guaranteed to receive
// from a run. Field names match the JSON consumed by downstream automation.
type Summary struct {
	Timestamp      time.Time `json:"timestamp"`
	NewJobsCount   int       `json:"new_jobs_count"`
	TotalJobsCount int       `json:"total_jobs_count"`
	SkippedCount   int       `json:"skipped_count"`
	HasNewJobs     bool      `json:"has_new_jobs"`
}

// Summarize aggregates a diff result. Total counts post-dedup postings only;
// skipped records are reported separately and never counted as jobs.
func Summarize(result differ.RunResult, at time.Time) Summary {
	newCount := len(result.New)
	return Summary{
		Timestamp:      at,
		NewJobsCount:   newCount,
		TotalJobsCount: newCount + len(result.Seen),
		SkippedCount:   result.Skipped,
		HasNewJobs:     newCount > 0,
	}
}
