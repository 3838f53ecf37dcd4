package memory

import (
	"context"
	"sync"

	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
)

// Ensure EmbeddingStore implements the interface.
var _ driven.EmbeddingStore = (*EmbeddingStore)(nil)

// EmbeddingStore is an in-memory content-addressed vector store.
type EmbeddingStore struct {
	mu      sync.RWMutex
	vectors map[string][]float32 // key: hash + "\x00" + model
}

// NewEmbeddingStore creates an empty store.
func NewEmbeddingStore() *EmbeddingStore {
	return &EmbeddingStore{vectors: make(map[string][]float32)}
}

func key(hash, model string) string {
	return hash + "\x00" + model
}

// Get implements driven.EmbeddingStore.
func (s *EmbeddingStore) Get(_ context.Context, hash, model string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vectors[key(hash, model)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, nil
}

// Put implements driven.EmbeddingStore. Idempotent by construction.
func (s *EmbeddingStore) Put(_ context.Context, hash, model string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]float32, len(vector))
	copy(stored, vector)
	s.vectors[key(hash, model)] = stored
	return nil
}

// Delete implements driven.EmbeddingStore.
func (s *EmbeddingStore) Delete(_ context.Context, hash, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(hash, model)
	if _, ok := s.vectors[k]; !ok {
		return domain.ErrNotFound
	}
	delete(s.vectors, k)
	return nil
}

// All implements driven.EmbeddingStore.
func (s *EmbeddingStore) All(_ context.Context, model string) (map[string][]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suffix := "\x00" + model
	out := make(map[string][]float32)
	for k, v := range s.vectors {
		if len(k) > len(suffix) && k[len(k)-len(suffix):] == suffix {
			hash := k[:len(k)-len(suffix)]
			vec := make([]float32, len(v))
			copy(vec, v)
			out[hash] = vec
		}
	}
	return out, nil
}

// Len reports the number of stored vectors.
func (s *EmbeddingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}
