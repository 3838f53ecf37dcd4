package driving

import (
	"context"

	"github.com/sluglab/slugline/internal/core/domain"
)

// IndexerService keeps the store consistent with one script.
type IndexerService interface {
	// Index applies the script's current content to the store: new
	// scenes are added, vanished scenes removed, moved scenes
	// renumbered. Re-indexing an unchanged script is a no-op.
	Index(ctx context.Context, script *domain.Script) (*domain.IndexReport, error)
}
