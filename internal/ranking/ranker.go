// Package ranking provides the pluggable scorers that order search
// candidates, and the hybrid ranker that combines them. Each scorer maps
// a (query, candidate) pair to a score in [0,1]; a candidate missing the
// signal a scorer depends on receives the neutral score so hybrid
// combination stays stable.
package ranking

import (
	"strings"

	"github.com/sluglab/slugline/internal/core/domain"
)

// Neutral is the score a ranker returns when its signal is absent.
// It is deliberately not zero: an absent signal must neither sink nor
// exclude a candidate.
const Neutral = 0.5

// Ranker scores a candidate for a query.
type Ranker interface {
	// Name identifies the ranker in weight configuration.
	Name() string

	// Score returns a value in [0,1].
	Score(q *domain.SearchQuery, c *domain.Candidate) float64
}

// queryTerms returns the lexical terms relevant to the query's scope.
func queryTerms(q *domain.SearchQuery) []string {
	var parts []string
	if q.Text != "" {
		parts = append(parts, q.Text)
	}
	if q.DialogueText != "" {
		parts = append(parts, q.DialogueText)
	}
	if q.ActionText != "" {
		parts = append(parts, q.ActionText)
	}
	return domain.Terms(strings.Join(parts, " "))
}

// candidateText returns the candidate text the query's scope matches
// against: dialogue for dialogue-scoped queries, action for
// action-scoped, both otherwise.
func candidateText(q *domain.SearchQuery, c *domain.Candidate) string {
	switch {
	case q.DialogueText != "" && q.ActionText == "" && q.Text == "":
		return c.DialogueText
	case q.ActionText != "" && q.DialogueText == "" && q.Text == "":
		return c.ActionText
	default:
		return c.ActionText + " " + c.DialogueText
	}
}
