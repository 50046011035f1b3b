package driven

import "context"

// CompletionService composes an answer from a question and retrieved
// context. Optional: when nil, queries return ranked sources only and
// the caller synthesises the answer.
type CompletionService interface {
	// Complete generates text for the given prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the completion model being used.
	ModelName() string
}
