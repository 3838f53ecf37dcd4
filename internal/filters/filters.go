// Package filters provides composable post-filters applied to ranked
// search results. Each filter is a stateless predicate given its
// configuration; the chain guarantees that filter order never changes
// the final result set, only intermediate work.
package filters

import (
	"strings"

	"github.com/sluglab/slugline/internal/core/domain"
)

// Filter narrows a ranked result list.
type Filter interface {
	// Name identifies the filter.
	Name() string

	// Apply returns the results that pass the filter.
	Apply(results []domain.SearchResult) []domain.SearchResult
}

// predicateFilter adapts a per-result predicate into a Filter.
type predicateFilter struct {
	name string
	keep func(*domain.SearchResult) bool
}

func (f *predicateFilter) Name() string { return f.name }

func (f *predicateFilter) Apply(results []domain.SearchResult) []domain.SearchResult {
	kept := results[:0:0]
	for i := range results {
		if f.keep(&results[i]) {
			kept = append(kept, results[i])
		}
	}
	return kept
}

// lowerSet builds a lookup set of lowercased values.
func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}

// NewCharacterFilter keeps scenes where any of the named characters
// speak. Names are matched through the same normalisation as character
// identity resolution.
func NewCharacterFilter(names []string) Filter {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[domain.NormalizeCharacterName(n)] = true
	}
	return &predicateFilter{
		name: "character",
		keep: func(r *domain.SearchResult) bool {
			for _, speaker := range r.Candidate.Speakers {
				if want[domain.NormalizeCharacterName(speaker)] {
					return true
				}
			}
			return false
		},
	}
}

// NewLocationFilter keeps scenes whose location contains any of the
// given values (case-insensitive).
func NewLocationFilter(locations []string) Filter {
	wanted := make([]string, 0, len(locations))
	for _, l := range locations {
		wanted = append(wanted, strings.ToLower(strings.TrimSpace(l)))
	}
	return &predicateFilter{
		name: "location",
		keep: func(r *domain.SearchResult) bool {
			loc := strings.ToLower(r.Candidate.Location)
			for _, w := range wanted {
				if strings.Contains(loc, w) {
					return true
				}
			}
			return false
		},
	}
}

// NewTimeOfDayFilter keeps scenes with any of the given times of day.
func NewTimeOfDayFilter(times []string) Filter {
	want := lowerSet(times)
	return &predicateFilter{
		name: "time_of_day",
		keep: func(r *domain.SearchResult) bool {
			return want[strings.ToLower(strings.TrimSpace(r.Candidate.TimeOfDay))]
		},
	}
}

// NewSeasonEpisodeFilter keeps scenes inside the episode range. Scenes
// without coordinates are excluded when a range is requested.
func NewSeasonEpisodeFilter(r domain.EpisodeRange) Filter {
	return &predicateFilter{
		name: "season_episode",
		keep: func(res *domain.SearchResult) bool {
			return r.Contains(res.Candidate.Season, res.Candidate.Episode)
		},
	}
}
