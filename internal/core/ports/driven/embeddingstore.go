package driven

import "context"

// EmbeddingStore is a content-addressed vector store keyed by
// (content hash, model version). Vectors are immutable once written:
// changed scene content produces a new hash, never an in-place update.
type EmbeddingStore interface {
	// Get returns the vector for a hash and model, or domain.ErrNotFound.
	Get(ctx context.Context, hash, model string) ([]float32, error)

	// Put stores a vector. Idempotent: writing the same key twice must
	// not duplicate storage.
	Put(ctx context.Context, hash, model string, vector []float32) error

	// Delete removes a vector. Callers must first verify no scene still
	// references the hash.
	Delete(ctx context.Context, hash, model string) error

	// All returns every stored vector for a model, keyed by hash.
	// Used to serve nearest-neighbour scans.
	All(ctx context.Context, model string) (map[string][]float32, error)
}
