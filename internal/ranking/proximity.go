package ranking

import (
	"strings"

	"github.com/sluglab/slugline/internal/core/domain"
)

// ProximityRanker scores by the distance between matched query terms in
// the candidate text: the tighter the window covering all terms, the
// higher the score. Single-term queries carry no proximity signal and
// score neutrally.
type ProximityRanker struct{}

// NewProximityRanker creates a proximity ranker.
func NewProximityRanker() *ProximityRanker {
	return &ProximityRanker{}
}

// Name identifies the ranker.
func (r *ProximityRanker) Name() string { return "proximity" }

// Score implements Ranker.
func (r *ProximityRanker) Score(q *domain.SearchQuery, c *domain.Candidate) float64 {
	terms := queryTerms(q)
	if len(terms) < 2 {
		return Neutral
	}

	words := strings.Fields(strings.ToLower(candidateText(q, c)))
	span := minWindow(words, terms)
	if span < 0 {
		// Not all terms present: no proximity signal.
		return Neutral
	}

	// A window equal to the term count means the terms are adjacent.
	slack := span - len(terms)
	return 1.0 / (1.0 + float64(slack))
}

// minWindow returns the length of the smallest window of words
// containing every term at least once, or -1 when some term is absent.
func minWindow(words, terms []string) int {
	want := make(map[string]int, len(terms))
	for _, t := range terms {
		want[t]++
	}

	have := make(map[string]int)
	missing := len(want)
	best := -1
	left := 0

	for right, w := range words {
		if _, ok := want[w]; ok {
			have[w]++
			if have[w] == want[w] {
				missing--
			}
		}
		for missing == 0 {
			if best < 0 || right-left+1 < best {
				best = right - left + 1
			}
			lw := words[left]
			if _, ok := want[lw]; ok {
				have[lw]--
				if have[lw] < want[lw] {
					missing++
				}
			}
			left++
		}
	}

	return best
}
