package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sluglab/slugline/internal/adapters/driven/storage/memory"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)

	// Opposite vectors clamp to zero rather than going negative.
	assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}))

	// Degenerate inputs score zero.
	assert.Zero(t, CosineSimilarity(nil, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestSearchRanksByDescendingSimilarity(t *testing.T) {
	store := memory.NewEmbeddingStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "near", "m", []float32{1, 0.1}))
	require.NoError(t, store.Put(ctx, "far", "m", []float32{0.1, 1}))
	require.NoError(t, store.Put(ctx, "exact", "m", []float32{1, 0}))

	ix := NewIndex(store, "m")
	hits, err := ix.Search(ctx, []float32{1, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "exact", hits[0].ContentHash)
	assert.Equal(t, "near", hits[1].ContentHash)
	assert.Equal(t, "far", hits[2].ContentHash)
}

func TestSearchAppliesThresholdAndK(t *testing.T) {
	store := memory.NewEmbeddingStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "near", "m", []float32{1, 0.1}))
	require.NoError(t, store.Put(ctx, "far", "m", []float32{0.1, 1}))
	require.NoError(t, store.Put(ctx, "exact", "m", []float32{1, 0}))

	ix := NewIndex(store, "m")

	hits, err := ix.Search(ctx, []float32{1, 0}, 10, 0.9)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Similarity, 0.9)
	}

	hits, err = ix.Search(ctx, []float32{1, 0}, 1, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "exact", hits[0].ContentHash)
}

func TestSearchOtherModelInvisible(t *testing.T) {
	store := memory.NewEmbeddingStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a", "other-model", []float32{1, 0}))

	ix := NewIndex(store, "m")
	hits, err := ix.Search(ctx, []float32{1, 0}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := NewIndex(memory.NewEmbeddingStore(), "m")
	hits, err := ix.Search(context.Background(), nil, 10, 0)
	require.NoError(t, err)
	assert.Nil(t, hits)
}
