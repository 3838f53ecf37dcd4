package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sluglab/slugline/internal/core/domain"
)

func result(hash string, score float64, mutate func(*domain.Candidate)) domain.SearchResult {
	c := domain.Candidate{
		ContentHash: hash,
		Location:    "RV - DESERT",
		TimeOfDay:   "DAY",
		Speakers:    []string{"WALTER", "JESSE"},
		Season:      1,
		Episode:     3,
	}
	if mutate != nil {
		mutate(&c)
	}
	return domain.SearchResult{Candidate: c, Score: score}
}

func testResults() []domain.SearchResult {
	return []domain.SearchResult{
		result("h1", 0.9, nil),
		result("h2", 0.8, func(c *domain.Candidate) {
			c.Speakers = []string{"SKYLER"}
			c.TimeOfDay = "NIGHT"
		}),
		result("h3", 0.7, func(c *domain.Candidate) {
			c.Location = "CAR WASH"
			c.Season = 2
			c.Episode = 1
		}),
		// Same content as h1, indexed from a second script.
		result("h1", 0.6, nil),
	}
}

func TestCharacterFilter(t *testing.T) {
	f := NewCharacterFilter([]string{"walter (V.O.)"})

	kept := f.Apply(testResults())

	require.Len(t, kept, 3)
	for _, r := range kept {
		assert.Contains(t, r.Candidate.Speakers, "WALTER")
	}
}

func TestLocationFilter_SubstringMatch(t *testing.T) {
	f := NewLocationFilter([]string{"desert"})

	kept := f.Apply(testResults())

	require.Len(t, kept, 3)
}

func TestTimeOfDayFilter(t *testing.T) {
	f := NewTimeOfDayFilter([]string{"NIGHT"})

	kept := f.Apply(testResults())

	require.Len(t, kept, 1)
	assert.Equal(t, "h2", kept[0].Candidate.ContentHash)
}

func TestSeasonEpisodeFilter(t *testing.T) {
	f := NewSeasonEpisodeFilter(domain.EpisodeRange{
		From: domain.EpisodeRef{Season: 1, Episode: 1},
		To:   domain.EpisodeRef{Season: 1, Episode: 99},
	})

	kept := f.Apply(testResults())

	require.Len(t, kept, 3)
	for _, r := range kept {
		assert.Equal(t, 1, r.Candidate.Season)
	}
}

func TestDuplicateFilter_KeepsHighestRanked(t *testing.T) {
	f := NewDuplicateFilter()

	kept := f.Apply(testResults())

	require.Len(t, kept, 3)
	assert.Equal(t, 0.9, kept[0].Score)
	for i := 1; i < len(kept); i++ {
		assert.NotEqual(t, kept[0].Candidate.ContentHash, kept[i].Candidate.ContentHash)
	}
}

func TestChain_ShortCircuitsOnEmpty(t *testing.T) {
	calls := 0
	counting := &predicateFilter{
		name: "counting",
		keep: func(*domain.SearchResult) bool { calls++; return true },
	}

	chain := NewChain().
		Add(NewTimeOfDayFilter([]string{"DAWN"})). // matches nothing
		Add(counting)

	kept := chain.Apply(testResults())

	assert.Empty(t, kept)
	assert.Zero(t, calls)
}

func TestChain_OrderDoesNotChangeResultSet(t *testing.T) {
	all := []Filter{
		NewCharacterFilter([]string{"WALTER"}),
		NewLocationFilter([]string{"desert"}),
		NewSeasonEpisodeFilter(domain.EpisodeRange{
			From: domain.EpisodeRef{Season: 1, Episode: 1},
			To:   domain.EpisodeRef{Season: 2, Episode: 99},
		}),
		NewDuplicateFilter(),
	}

	orderings := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}

	var baseline map[string]bool
	for _, order := range orderings {
		chain := NewChain()
		for _, idx := range order {
			chain.Add(all[idx])
		}

		kept := chain.Apply(testResults())

		set := make(map[string]bool)
		for _, r := range kept {
			set[r.Candidate.ContentHash] = true
		}
		if baseline == nil {
			baseline = set
			continue
		}
		assert.Equal(t, baseline, set, "ordering %v", order)
	}
}

func TestFromQuery_BuildsPerFieldFilters(t *testing.T) {
	q := &domain.SearchQuery{
		Characters: []string{"WALTER"},
		Locations:  []string{"RV"},
	}

	chain := FromQuery(q)

	// Two predicates plus the always-present duplicate filter.
	assert.Equal(t, 3, chain.Len())
}
