package driven

import "context"

// LLMService provides text completion for metadata extraction feeding
// the index. Optional: when nil, extraction-dependent features are
// skipped, never failed.
type LLMService interface {
	// Complete produces a completion for the prompt. Callers requesting
	// structured output include the schema in the prompt and parse the
	// returned text themselves.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName returns the model identifier.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
