// Package embedstore provides decorators over the embedding store port.
package embedstore

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sluglab/slugline/internal/core/ports/driven"
)

// DefaultCacheSize bounds the in-process vector cache. Vectors are
// immutable per (hash, model) key, so cached entries never go stale.
const DefaultCacheSize = 4096

// Cached wraps an EmbeddingStore with an LRU read cache. Indexing reads
// every scene's vector at least once per run to decide whether to embed;
// the cache keeps re-index runs off the storage layer.
type Cached struct {
	inner driven.EmbeddingStore
	cache *lru.Cache[string, []float32]
}

var _ driven.EmbeddingStore = (*Cached)(nil)

// NewCached creates a caching decorator. size <= 0 uses DefaultCacheSize.
func NewCached(inner driven.EmbeddingStore, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func cacheKey(hash, model string) string {
	return hash + "\x00" + model
}

// Get returns the vector from cache or falls through to the inner store.
func (c *Cached) Get(ctx context.Context, hash, model string) ([]float32, error) {
	key := cacheKey(hash, model)
	if vector, ok := c.cache.Get(key); ok {
		return vector, nil
	}
	vector, err := c.inner.Get(ctx, hash, model)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vector)
	return vector, nil
}

// Put writes through to the inner store and refreshes the cache.
func (c *Cached) Put(ctx context.Context, hash, model string, vector []float32) error {
	if err := c.inner.Put(ctx, hash, model, vector); err != nil {
		return err
	}
	c.cache.Add(cacheKey(hash, model), vector)
	return nil
}

// Delete removes the vector from both layers.
func (c *Cached) Delete(ctx context.Context, hash, model string) error {
	c.cache.Remove(cacheKey(hash, model))
	return c.inner.Delete(ctx, hash, model)
}

// All bypasses the cache: full scans come straight from storage.
func (c *Cached) All(ctx context.Context, model string) (map[string][]float32, error) {
	return c.inner.All(ctx, model)
}
