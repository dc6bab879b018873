package ai

import (
	"context"
)

// Completer defines the contract for interacting with hosted chat models.
// Implementations return the raw text of the first completion choice and
// surface every transport or API failure as an error; callers decide whether
// to retry.
type Completer interface {
	// Complete sends the role-tagged messages and returns the model's text.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Name identifies the provider and model, e.g. "openai/gpt-4o-search-preview".
	Name() string
}
