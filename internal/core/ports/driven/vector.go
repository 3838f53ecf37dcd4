package driven

import "context"

// VectorIndex provides nearest-neighbour search over scene embeddings.
type VectorIndex interface {
	// Search finds up to k hashes whose vectors have cosine similarity
	// of at least minSimilarity with the query vector, best first.
	Search(ctx context.Context, query []float32, k int, minSimilarity float64) ([]VectorHit, error)
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ContentHash is the matched scene content hash.
	ContentHash string

	// Similarity is the cosine similarity in [0,1].
	Similarity float64
}
