package ranking

import "github.com/sluglab/slugline/internal/core/domain"

// positionScale controls how quickly the positional score decays with
// scene number.
const positionScale = 50.0

// PositionalRanker prefers scenes earlier in their script. It is a
// tie-break signal for canonical reading order, combined with a small
// weight, never a primary signal.
type PositionalRanker struct{}

// NewPositionalRanker creates a positional ranker.
func NewPositionalRanker() *PositionalRanker {
	return &PositionalRanker{}
}

// Name identifies the ranker.
func (r *PositionalRanker) Name() string { return "positional" }

// Score implements Ranker.
func (r *PositionalRanker) Score(_ *domain.SearchQuery, c *domain.Candidate) float64 {
	if c.SceneNumber <= 0 {
		return Neutral
	}
	return 1.0 / (1.0 + float64(c.SceneNumber-1)/positionScale)
}
