package driving

import (
	"context"

	"github.com/sluglab/slugline/internal/core/domain"
)

// SearchService serves ranked, multi-modal search over the index.
type SearchService interface {
	// Search executes a structured query and returns a ranked,
	// paginated response. Semantic failures degrade to lexical-only
	// results rather than failing the request.
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error)
}
