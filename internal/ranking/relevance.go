package ranking

import "github.com/sluglab/slugline/internal/core/domain"

// RelevanceRanker surfaces a precomputed relevance score, typically the
// cosine similarity attached by semantic retrieval. Candidates that only
// came through lexical retrieval carry no relevance and score neutrally.
type RelevanceRanker struct{}

// NewRelevanceRanker creates a relevance ranker.
func NewRelevanceRanker() *RelevanceRanker {
	return &RelevanceRanker{}
}

// Name identifies the ranker.
func (r *RelevanceRanker) Name() string { return "relevance" }

// Score implements Ranker.
func (r *RelevanceRanker) Score(_ *domain.SearchQuery, c *domain.Candidate) float64 {
	if !c.HasRelevance {
		return Neutral
	}
	switch {
	case c.Relevance < 0:
		return 0
	case c.Relevance > 1:
		return 1
	default:
		return c.Relevance
	}
}
