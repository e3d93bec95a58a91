package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobsift/internal/differ"
	"jobsift/internal/history"
	"jobsift/internal/model"
	"jobsift/internal/report"
)

// Archiver records the full posting rows of a run for later review. It is
// optional; a nil Archiver disables archiving.
type Archiver interface {
	RecordRun(runDate time.Time, newPostings, seenPostings []model.Posting) error
}

// Runner owns the full run pipeline:
// lock → load history → fetch → filter → diff → classify → report → save → notify.
type Runner struct {
	source      model.PostingSource
	filter      model.PostingFilter // nil disables the keyword prefilter
	classifier  model.Classifier
	notifier    model.Notifier
	writer      *report.Writer
	archive     Archiver // nil disables archiving
	historyPath string
	logger      *slog.Logger
}

// NewRunner creates a pipeline runner wired with all its dependencies.
func NewRunner(
	source model.PostingSource,
	filter model.PostingFilter,
	classifier model.Classifier,
	notifier model.Notifier,
	writer *report.Writer,
	archive Archiver,
	historyPath string,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		source:      source,
		filter:      filter,
		classifier:  classifier,
		notifier:    notifier,
		writer:      writer,
		archive:     archive,
		historyPath: historyPath,
		logger:      logger,
	}
}

// Run executes one full cycle and returns the run summary. Report artifacts
// are staged before the history save and published only after it succeeds, so
// a fatal failure on either side leaves both the seen set and the report
// directory untouched.
func (r *Runner) Run(ctx context.Context) (report.Summary, error) {
	lock, err := history.Acquire(history.LockPath(r.historyPath))
	if err != nil {
		return report.Summary{}, err
	}
	defer lock.Release()

	store, err := history.Load(r.historyPath)
	if err != nil {
		return report.Summary{}, err
	}

	batch, err := r.source.FetchPostings(ctx)
	if err != nil {
		return report.Summary{}, fmt.Errorf("fetching postings: %w", err)
	}

	matched := batch
	if r.filter != nil {
		matched = nil
		for _, p := range batch {
			if r.filter.Match(p) {
				matched = append(matched, p)
			}
		}
	}

	runDate := time.Now().UTC()
	result := differ.Diff(matched, store, runDate, r.logger)

	r.classifyNew(ctx, result.New)

	// Reports are staged first and only published after the history commit,
	// so a fatal save failure leaves no run artifacts behind.
	summary := report.Summarize(result, runDate)
	staged, err := r.writer.Stage(result, summary)
	if err != nil {
		return report.Summary{}, err
	}
	defer staged.Discard()

	if err := store.Save(r.historyPath); err != nil {
		return report.Summary{}, err
	}

	if err := staged.Commit(); err != nil {
		return report.Summary{}, err
	}

	if r.archive != nil {
		if err := r.archive.RecordRun(runDate, result.New, result.Seen); err != nil {
			// The archive is display data only; a failed write must not fail
			// the run after the history was committed.
			r.logger.Warn("archiving run failed", "error", err)
		}
	}

	r.logger.Info("run complete",
		"fetched", len(batch),
		"matched", len(matched),
		"new", len(result.New),
		"seen", len(result.Seen),
		"skipped", result.Skipped,
	)

	if len(result.New) > 0 {
		if err := r.notifier.Notify(result.New); err != nil {
			return summary, fmt.Errorf("notifying: %w", err)
		}
	}

	return summary, nil
}

// classifyNew labels the new postings in place. A failed classification
// leaves the posting unlabeled; it never drops the posting or aborts the run.
func (r *Runner) classifyNew(ctx context.Context, postings []model.Posting) {
	if r.classifier == nil {
		return
	}
	for i := range postings {
		label, err := r.classifier.Classify(ctx, postings[i])
		if err != nil {
			r.logger.Warn("classification failed",
				"title", postings[i].Title,
				"company", postings[i].Company,
				"error", err,
			)
			continue
		}
		postings[i].Label = label
	}
}
