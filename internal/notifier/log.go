package notifier

import (
	"log/slog"

	"jobsift/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting with company, title, location, URL, and label.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(postings []model.Posting) error {
	for _, p := range postings {
		args := []any{"company", p.Company, "title", p.Title, "location", p.Location, "url", p.URL}
		if p.Label != model.LabelNone {
			args = append(args, "label", string(p.Label))
		}
		if p.PostedAt != nil {
			args = append(args, "posted_at", *p.PostedAt)
		}
		n.logger.Info("new job", args...)
	}
	return nil
}
