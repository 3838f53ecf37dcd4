package driven

import (
	"context"

	"github.com/sluglab/slugline/internal/core/domain"
)

// ImportStateStore persists bulk-import progress so an interrupted run
// can resume. The layout is forward-compatible: loading state written by
// an older or newer version must not fail on unknown fields.
type ImportStateStore interface {
	// Load reads the state at path, or domain.ErrNotFound when no state
	// exists yet.
	Load(ctx context.Context, path string) (*domain.ImportState, error)

	// Save writes the state atomically.
	Save(ctx context.Context, path string, state *domain.ImportState) error
}
