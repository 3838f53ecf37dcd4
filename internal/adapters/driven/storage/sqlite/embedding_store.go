package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
)

// embeddingStore implements driven.EmbeddingStore.
type embeddingStore struct {
	store *Store
}

var _ driven.EmbeddingStore = (*embeddingStore)(nil)

// Get returns the vector for a hash and model.
func (s *embeddingStore) Get(ctx context.Context, hash, model string) ([]float32, error) {
	var blob []byte
	err := s.store.db.QueryRowContext(ctx,
		"SELECT vector FROM embeddings WHERE content_hash = ? AND model = ?",
		hash, model,
	).Scan(&blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying embedding: %w", err)
	}
	return bytesToFloat32Slice(blob), nil
}

// Put stores a vector. Rewriting the same (hash, model) key replaces the
// blob rather than duplicating storage.
func (s *embeddingStore) Put(ctx context.Context, hash, model string, vector []float32) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO embeddings (content_hash, model, vector)
		VALUES (?, ?, ?)
		ON CONFLICT(content_hash, model) DO UPDATE SET
			vector = excluded.vector
	`, hash, model, float32SliceToBytes(vector))
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// Delete removes a vector.
func (s *embeddingStore) Delete(ctx context.Context, hash, model string) error {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM embeddings WHERE content_hash = ? AND model = ?",
		hash, model,
	)
	if err != nil {
		return fmt.Errorf("deleting embedding: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// All returns every stored vector for a model, keyed by hash.
func (s *embeddingStore) All(ctx context.Context, model string) (map[string][]float32, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT content_hash, vector FROM embeddings WHERE model = ?", model,
	)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	vectors := make(map[string][]float32)
	for rows.Next() {
		var hash string
		var blob []byte
		if err := rows.Scan(&hash, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		vectors[hash] = bytesToFloat32Slice(blob)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return vectors, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
