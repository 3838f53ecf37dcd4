package driven

import "context"

// EmbeddingService generates vector embeddings from text. This is the
// external LLM collaborator - when nil, semantic search is disabled and
// search degrades to lexical-only.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768).
	Dimensions() int

	// ModelName returns the model identifier. It is part of the
	// embedding store key: switching models never overwrites vectors.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
