package classify

import (
	"context"

	"jobsift/internal/model"
)

// NopClassifier is used when the classifier is disabled. Postings stay
// unlabeled and no LLM calls are made.
type NopClassifier struct{}

// NewNopClassifier returns a NopClassifier.
func NewNopClassifier() *NopClassifier {
	return &NopClassifier{}
}

// Classify returns LabelNone.
func (n *NopClassifier) Classify(_ context.Context, _ model.Posting) (model.Label, error) {
	return model.LabelNone, nil
}
