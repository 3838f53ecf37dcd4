// Package state persists bulk-import progress as a JSON file.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.ImportStateStore = (*FileStore)(nil)

// FileStore stores import state as a JSON document on disk. Writes are
// atomic: the state is written to a temp file in the same directory and
// renamed into place, so a crash mid-save never corrupts existing state.
type FileStore struct{}

// NewFileStore creates a file-backed import state store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads the state at path. Unknown JSON fields are ignored, so
// state written by other versions loads cleanly.
func (f *FileStore) Load(_ context.Context, path string) (*domain.ImportState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading import state: %w", err)
	}

	var state domain.ImportState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing import state: %w", err)
	}
	if state.Files == nil {
		state.Files = make(map[string]domain.FileState)
	}
	if state.SeriesCache == nil {
		state.SeriesCache = make(map[string]string)
	}

	return &state, nil
}

// Save writes the state atomically via a temp file and rename.
func (f *FileStore) Save(_ context.Context, path string, state *domain.ImportState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling import state: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".import-state-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing import state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing import state: %w", err)
	}

	return nil
}
