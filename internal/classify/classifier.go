package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"

	"jobsift/internal/model"
)

// Ensure LLMClassifier implements model.Classifier.
var _ model.Classifier = (*LLMClassifier)(nil)

// LLMClassifier judges a posting's relevance against the operator's
// natural-language query using an LLM.
type LLMClassifier struct {
	provider LLMProvider
	tmpl     *template.Template
	query    string
	logger   *slog.Logger
}

// NewLLMClassifier creates a classifier for the given relevance query.
func NewLLMClassifier(provider LLMProvider, tmpl *template.Template, query string, logger *slog.Logger) *LLMClassifier {
	return &LLMClassifier{
		provider: provider,
		tmpl:     tmpl,
		query:    query,
		logger:   logger,
	}
}

// promptData is the template context for the relevance prompt.
type promptData struct {
	Query       string
	Title       string
	Company     string
	Location    string
	Description string
}

// rawVerdict is the JSON shape returned by the LLM (matches relevanceSchema).
type rawVerdict struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// Classify renders the prompt, calls the LLM, and maps the verdict onto the
// closed label set. The label is an opaque annotation; callers never branch
// on anything but pass-through.
func (c *LLMClassifier) Classify(ctx context.Context, p model.Posting) (model.Label, error) {
	var promptBuf bytes.Buffer
	err := c.tmpl.Execute(&promptBuf, promptData{
		Query:       c.query,
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		Description: p.Description,
	})
	if err != nil {
		return model.LabelNone, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := c.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return model.LabelNone, fmt.Errorf("llm complete: %w", err)
	}

	label, err := parseVerdict(raw)
	if err != nil {
		return model.LabelNone, fmt.Errorf("parse verdict: %w", err)
	}

	c.logger.Debug("classified posting", "title", p.Title, "company", p.Company, "label", label)
	return label, nil
}

// parseVerdict deserializes the LLM response. Structured outputs guarantee
// the enum, but the label is still checked so a misbehaving endpoint cannot
// smuggle an open-ended value into the report.
func parseVerdict(raw string) (model.Label, error) {
	var v rawVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return model.LabelNone, fmt.Errorf("unmarshal verdict JSON: %w", err)
	}

	switch label := model.Label(v.Label); label {
	case model.LabelRelevant, model.LabelNotRelevant, model.LabelUncertain:
		return label, nil
	default:
		return model.LabelNone, fmt.Errorf("unknown label %q", v.Label)
	}
}
