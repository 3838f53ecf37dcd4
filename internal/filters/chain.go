package filters

import "github.com/sluglab/slugline/internal/core/domain"

// Chain applies filters in sequence, short-circuiting on an empty
// result set.
//
// Commutativity: pure predicates decide each result independently, so
// their order among themselves never changes the final set. Duplicate
// elimination depends on which same-hash siblings survive, so the chain
// always runs deduplication after every predicate regardless of the
// order filters were added. Reordering Add calls changes performance,
// not correctness.
type Chain struct {
	predicates []Filter
	dedupes    []Filter
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a filter and returns the chain for composition.
func (c *Chain) Add(f Filter) *Chain {
	if _, ok := f.(*DuplicateFilter); ok {
		c.dedupes = append(c.dedupes, f)
	} else {
		c.predicates = append(c.predicates, f)
	}
	return c
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.predicates) + len(c.dedupes)
}

// Apply runs the chain over ranked results.
func (c *Chain) Apply(results []domain.SearchResult) []domain.SearchResult {
	for _, f := range c.predicates {
		if len(results) == 0 {
			return results
		}
		results = f.Apply(results)
	}
	for _, f := range c.dedupes {
		if len(results) == 0 {
			return results
		}
		results = f.Apply(results)
	}
	return results
}

// FromQuery builds the standard chain for a query: one predicate per
// populated filter field, then duplicate elimination.
func FromQuery(q *domain.SearchQuery) *Chain {
	chain := NewChain()
	if len(q.Characters) > 0 {
		chain.Add(NewCharacterFilter(q.Characters))
	}
	if len(q.Locations) > 0 {
		chain.Add(NewLocationFilter(q.Locations))
	}
	if len(q.TimesOfDay) > 0 {
		chain.Add(NewTimeOfDayFilter(q.TimesOfDay))
	}
	if q.Episodes != nil {
		chain.Add(NewSeasonEpisodeFilter(*q.Episodes))
	}
	chain.Add(NewDuplicateFilter())
	return chain
}
