package classify

import "context"

// LLMProvider sends a prompt to an LLM and returns the raw text response.
// Used only by LLMClassifier and its decorators.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
