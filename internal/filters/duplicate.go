package filters

import "github.com/sluglab/slugline/internal/core/domain"

// DuplicateFilter removes results sharing a content hash, keeping the
// highest-ranked instance. The decision depends only on the relative
// order of same-hash results, so it commutes with pure predicates as
// long as the chain applies it after them (see Chain).
type DuplicateFilter struct{}

// NewDuplicateFilter creates a duplicate filter.
func NewDuplicateFilter() *DuplicateFilter {
	return &DuplicateFilter{}
}

// Name identifies the filter.
func (f *DuplicateFilter) Name() string { return "duplicate" }

// Apply keeps the first (highest-ranked) result per content hash.
// Input order is preserved.
func (f *DuplicateFilter) Apply(results []domain.SearchResult) []domain.SearchResult {
	seen := make(map[string]bool, len(results))
	kept := results[:0:0]
	for i := range results {
		hash := results[i].Candidate.ContentHash
		if seen[hash] {
			continue
		}
		seen[hash] = true
		kept = append(kept, results[i])
	}
	return kept
}
