package ranking

import (
	"sort"

	"github.com/sluglab/slugline/internal/core/domain"
)

// Weight pairs a ranker with its relative influence. Weights need not
// sum to 1; combined scores are normalised by the weight total.
type Weight struct {
	Ranker Ranker
	Weight float64
}

// HybridRanker combines scorers into one ordering via a weighted linear
// combination. Ordering is deterministic: equal combined scores fall
// back to (script order, scene number) ascending.
type HybridRanker struct {
	weights []Weight
}

// NewHybridRanker creates a hybrid ranker from an explicit weight list.
// Zero or negative weights are dropped.
func NewHybridRanker(weights []Weight) *HybridRanker {
	kept := make([]Weight, 0, len(weights))
	for _, w := range weights {
		if w.Weight > 0 && w.Ranker != nil {
			kept = append(kept, w)
		}
	}
	return &HybridRanker{weights: kept}
}

// DefaultWeights is the standard scorer configuration: lexical match
// quality dominates, semantic relevance is a strong secondary signal,
// proximity refines multi-term matches and position breaks near-ties.
func DefaultWeights() []Weight {
	return []Weight{
		{Ranker: NewTextMatchRanker(), Weight: 1.0},
		{Ranker: NewRelevanceRanker(), Weight: 0.8},
		{Ranker: NewProximityRanker(), Weight: 0.5},
		{Ranker: NewPositionalRanker(), Weight: 0.1},
	}
}

// Score returns the weighted combination in [0,1].
func (h *HybridRanker) Score(q *domain.SearchQuery, c *domain.Candidate) float64 {
	if len(h.weights) == 0 {
		return Neutral
	}
	var sum, total float64
	for _, w := range h.weights {
		sum += w.Weight * w.Ranker.Score(q, c)
		total += w.Weight
	}
	return sum / total
}

// Rank scores and orders candidates, best first.
func (h *HybridRanker) Rank(q *domain.SearchQuery, candidates []domain.Candidate) []domain.SearchResult {
	results := make([]domain.SearchResult, len(candidates))
	for i := range candidates {
		results[i] = domain.SearchResult{
			Candidate: candidates[i],
			Score:     h.Score(q, &candidates[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		a, b := &results[i].Candidate, &results[j].Candidate
		if a.ScriptOrder != b.ScriptOrder {
			return a.ScriptOrder < b.ScriptOrder
		}
		return a.SceneNumber < b.SceneNumber
	})

	return results
}
