package driving

import (
	"context"

	"github.com/sluglab/slugline/internal/core/domain"
)

// BulkImporter drives transactional batch ingestion with persisted,
// resumable progress.
type BulkImporter interface {
	// Import processes the given files in batches. Each batch validates
	// every file first and then commits the valid ones in a single
	// storage transaction: a file failing validation is marked failed
	// without blocking its siblings, while a write failure rolls the
	// batch back and leaves siblings pending for the next run.
	// Cancellation is honoured between batches.
	Import(ctx context.Context, paths []string, opts domain.ImportOptions) (*domain.ImportSummary, error)
}
