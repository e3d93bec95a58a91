package differ

import (
	"log/slog"
	"strings"
	"time"

	"jobsift/internal/history"
	"jobsift/internal/identity"
	"jobsift/internal/model"
)

// RunResult partitions one scraped batch against the history store.
// New and Seen preserve the input order of first occurrences. Skipped counts
// malformed records that were dropped without aborting the batch.
type RunResult struct {
	New     []model.Posting
	Seen    []model.Posting
	Skipped int
}

// Diff classifies each posting in the batch as new or previously seen, in a
// single in-memory pass, and records every distinct fingerprint in the store
// at runDate. In-batch repeats of the same fingerprint (the source returned
// one physical posting twice, e.g. from overlapping location queries) are
// collapsed to their first occurrence. Malformed postings are skipped and
// logged; they never abort the batch.
func Diff(batch []model.Posting, store *history.Store, runDate time.Time, logger *slog.Logger) RunResult {
	var result RunResult
	inBatch := make(map[string]bool, len(batch))

	for i, p := range batch {
		if err := validate(i, p); err != nil {
			logger.Warn("skipping malformed posting", "error", err, "site", p.Site)
			result.Skipped++
			continue
		}

		fp := identity.Fingerprint(identity.Normalize(p))
		if inBatch[fp] {
			continue
		}
		inBatch[fp] = true

		// Classification depends only on the store state at first encounter
		// in this run, so the order of other postings never changes it.
		if store.Contains(fp) {
			result.Seen = append(result.Seen, p)
		} else {
			result.New = append(result.New, p)
		}
		store.Record(fp, runDate)
	}

	return result
}

func validate(index int, p model.Posting) *model.InvalidPostingError {
	if strings.TrimSpace(p.Title) == "" {
		return &model.InvalidPostingError{Index: index, Reason: "empty title"}
	}
	if strings.TrimSpace(p.Company) == "" {
		return &model.InvalidPostingError{Index: index, Reason: "empty company"}
	}
	return nil
}
