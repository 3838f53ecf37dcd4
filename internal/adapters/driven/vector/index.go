// Package vector provides nearest-neighbour search over stored scene
// embeddings. The index is a brute-force cosine scan: the embedding
// corpus is one vector per distinct scene content hash, small enough
// that an exact scan beats maintaining an approximate structure.
package vector

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sluglab/slugline/internal/core/ports/driven"
)

// Index implements driven.VectorIndex over an EmbeddingStore.
type Index struct {
	store driven.EmbeddingStore
	model string
}

var _ driven.VectorIndex = (*Index)(nil)

// NewIndex creates an index scanning vectors stored for the given model.
func NewIndex(store driven.EmbeddingStore, model string) *Index {
	return &Index{store: store, model: model}
}

// Search finds up to k hashes whose vectors have cosine similarity of at
// least minSimilarity with the query vector, best first.
func (ix *Index) Search(
	ctx context.Context, query []float32, k int, minSimilarity float64,
) ([]driven.VectorHit, error) {
	if len(query) == 0 || k <= 0 {
		return nil, nil
	}

	vectors, err := ix.store.All(ctx, ix.model)
	if err != nil {
		return nil, fmt.Errorf("loading vectors: %w", err)
	}

	var hits []driven.VectorHit //nolint:prealloc // most vectors fall below the threshold
	for hash, vector := range vectors {
		sim := CosineSimilarity(query, vector)
		if sim < minSimilarity {
			continue
		}
		hits = append(hits, driven.VectorHit{ContentHash: hash, Similarity: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ContentHash < hits[j].ContentHash
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// CosineSimilarity computes the cosine similarity between two vectors,
// clamped to [0,1]. Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
