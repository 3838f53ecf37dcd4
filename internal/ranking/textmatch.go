package ranking

import (
	"strings"

	"github.com/sluglab/slugline/internal/core/domain"
)

// TextMatchRanker scores lexical match quality: an exact phrase match
// beats all-terms-present, which beats a partial term match.
type TextMatchRanker struct{}

// NewTextMatchRanker creates a text match ranker.
func NewTextMatchRanker() *TextMatchRanker {
	return &TextMatchRanker{}
}

// Name identifies the ranker.
func (r *TextMatchRanker) Name() string { return "text_match" }

// Score implements Ranker.
func (r *TextMatchRanker) Score(q *domain.SearchQuery, c *domain.Candidate) float64 {
	terms := queryTerms(q)
	if len(terms) == 0 {
		return Neutral
	}

	text := strings.ToLower(candidateText(q, c))
	phrase := strings.Join(terms, " ")

	if strings.Contains(text, phrase) {
		return 1.0
	}

	matched := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			matched++
		}
	}
	if matched == len(terms) {
		return 0.7
	}
	return 0.4 * float64(matched) / float64(len(terms))
}
