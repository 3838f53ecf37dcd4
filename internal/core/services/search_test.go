package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sluglab/slugline/internal/adapters/driven/storage/memory"
	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
)

// stubVector serves canned nearest-neighbour hits.
type stubVector struct {
	hits  []driven.VectorHit
	err   error
	calls int
}

func (v *stubVector) Search(_ context.Context, _ []float32, _ int, _ float64) ([]driven.VectorHit, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return v.hits, nil
}

func searchTestConfig() SearchConfig {
	cfg := DefaultSearchConfig()
	cfg.SemanticTermThreshold = 3
	return cfg
}

// seedScript indexes a one-scene script and returns its content hash.
func seedScript(t *testing.T, store *memory.SceneStore, path, action string, dialogue ...domain.DialogueLine) string {
	t.Helper()
	script := &domain.Script{
		FilePath: path,
		Title:    path,
		Scenes: []domain.Scene{
			{
				SceneNumber: 1,
				SceneType:   domain.SceneInterior,
				Location:    "LAB",
				TimeOfDay:   "DAY",
				ActionText:  action,
				Dialogue:    dialogue,
			},
		},
	}
	indexer := NewIndexer(store, nil, nil)
	_, err := indexer.Index(context.Background(), script)
	require.NoError(t, err)
	return script.Scenes[0].Hash()
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := NewSearch(memory.NewSceneStore(), nil, nil, nil, searchTestConfig())

	resp, err := svc.Search(context.Background(), domain.SearchQuery{})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Empty(t, resp.SearchMethodsUsed)
}

func TestSearchLexicalOnly(t *testing.T) {
	store := memory.NewSceneStore()
	seedScript(t, store, "/a.json", "Walter cooks alone tonight.")
	seedScript(t, store, "/b.json", "Jesse drives the car away.")
	svc := NewSearch(store, nil, nil, nil, searchTestConfig())

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "cooks"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "/a.json", resp.Results[0].Candidate.ScriptPath)
	assert.Equal(t, []string{domain.SearchMethodLexical}, resp.SearchMethodsUsed)
}

func TestSearchSemanticMergeAddsScenes(t *testing.T) {
	store := memory.NewSceneStore()
	seedScript(t, store, "/a.json", "Walter cooks alone tonight.")
	otherHash := seedScript(t, store, "/b.json", "Jesse drives the car away.")

	vector := &stubVector{hits: []driven.VectorHit{{ContentHash: otherHash, Similarity: 0.9}}}
	svc := NewSearch(store, vector, &mockEmbedder{}, nil, searchTestConfig())

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "walter cooks alone"})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{domain.SearchMethodLexical, domain.SearchMethodSemantic},
		resp.SearchMethodsUsed)
	require.Len(t, resp.Results, 2)

	var semantic *domain.SearchResult
	for i := range resp.Results {
		if resp.Results[i].Candidate.ContentHash == otherHash {
			semantic = &resp.Results[i]
		}
	}
	require.NotNil(t, semantic, "vector hit should be hydrated into the result set")
	assert.True(t, semantic.Candidate.HasRelevance)
	assert.InDelta(t, 0.9, semantic.Candidate.Relevance, 1e-9)
}

func TestSearchSemanticHitBoostsLexicalResult(t *testing.T) {
	store := memory.NewSceneStore()
	lexHash := seedScript(t, store, "/a.json", "Walter cooks alone tonight.")

	vector := &stubVector{hits: []driven.VectorHit{{ContentHash: lexHash, Similarity: 0.95}}}
	svc := NewSearch(store, vector, &mockEmbedder{}, nil, searchTestConfig())

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "walter cooks alone"})
	require.NoError(t, err)

	// The semantic hit shares the lexical result's hash: the row gains
	// the similarity signal instead of being displaced or duplicated.
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Candidate.HasRelevance)
	assert.InDelta(t, 0.95, resp.Results[0].Candidate.Relevance, 1e-9)
}

func TestSearchDegradesOnEmbeddingFailure(t *testing.T) {
	store := memory.NewSceneStore()
	seedScript(t, store, "/a.json", "Walter cooks alone tonight.")

	vector := &stubVector{}
	svc := NewSearch(store, vector, &mockEmbedder{failing: true}, nil, searchTestConfig())

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "walter cooks alone"})
	require.NoError(t, err, "semantic failure must not fail the search")

	assert.Equal(t, []string{domain.SearchMethodLexical}, resp.SearchMethodsUsed)
	assert.Len(t, resp.Results, 1)
	assert.Zero(t, vector.calls, "vector search is skipped when the query cannot be embedded")
}

func TestSearchDegradesOnVectorFailure(t *testing.T) {
	store := memory.NewSceneStore()
	seedScript(t, store, "/a.json", "Walter cooks alone tonight.")

	vector := &stubVector{err: errors.New("index unavailable")}
	svc := NewSearch(store, vector, &mockEmbedder{}, nil, searchTestConfig())

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "walter cooks alone"})
	require.NoError(t, err)

	assert.Equal(t, []string{domain.SearchMethodLexical}, resp.SearchMethodsUsed)
	assert.Len(t, resp.Results, 1)
}

func TestSearchShortQuerySkipsSemantic(t *testing.T) {
	store := memory.NewSceneStore()
	seedScript(t, store, "/a.json", "Walter cooks alone tonight.")

	vector := &stubVector{}
	embedder := &mockEmbedder{}
	svc := NewSearch(store, vector, embedder, nil, searchTestConfig())

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "walter cooks"})
	require.NoError(t, err)

	assert.Zero(t, vector.calls)
	assert.Zero(t, embedder.embedCalls)
	assert.Equal(t, []string{domain.SearchMethodLexical}, resp.SearchMethodsUsed)
}

func TestSearchCharacterFilter(t *testing.T) {
	store := memory.NewSceneStore()
	seedScript(t, store, "/a.json", "The lab hums.",
		domain.DialogueLine{CharacterName: "WALT", Text: "We need to cook."})
	seedScript(t, store, "/b.json", "The lab hums.",
		domain.DialogueLine{CharacterName: "JESSE", Text: "Yeah, science!"})
	svc := NewSearch(store, nil, nil, nil, searchTestConfig())

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Characters: []string{"jesse"}})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "/b.json", resp.Results[0].Candidate.ScriptPath)
}

func TestSearchPagination(t *testing.T) {
	store := memory.NewSceneStore()
	seedScript(t, store, "/a.json", "The desert stretches out.")
	seedScript(t, store, "/b.json", "A desert wind picks up dust.")
	seedScript(t, store, "/c.json", "Night falls over the desert highway.")
	svc := NewSearch(store, nil, nil, nil, searchTestConfig())

	page1, err := svc.Search(context.Background(), domain.SearchQuery{Text: "desert", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page1.TotalCount)
	assert.Len(t, page1.Results, 2)
	assert.True(t, page1.HasMore)

	page2, err := svc.Search(context.Background(), domain.SearchQuery{Text: "desert", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page2.TotalCount)
	assert.Len(t, page2.Results, 1)
	assert.False(t, page2.HasMore)

	// Pages are disjoint.
	seen := map[int64]bool{}
	for _, r := range page1.Results {
		seen[r.Candidate.SceneID] = true
	}
	for _, r := range page2.Results {
		assert.False(t, seen[r.Candidate.SceneID])
	}
}

func TestSearchHighlights(t *testing.T) {
	store := memory.NewSceneStore()
	seedScript(t, store, "/a.json", "Sirens wail in the distance. A dog barks.")
	svc := NewSearch(store, nil, nil, nil, searchTestConfig())

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "sirens"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	require.NotEmpty(t, resp.Results[0].Highlights)
	assert.Contains(t, resp.Results[0].Highlights[0], "Sirens")
}

func TestSearchBibleResults(t *testing.T) {
	store := memory.NewSceneStore()
	series, err := store.ResolveSeries(context.Background(), "Breaking Bad")
	require.NoError(t, err)

	script := &domain.Script{
		FilePath: "/pilot.json",
		Title:    "Pilot",
		SeriesID: series.ID,
		Scenes: []domain.Scene{
			{
				SceneNumber: 1,
				SceneType:   domain.SceneInterior,
				Location:    "RV",
				TimeOfDay:   "DAY",
				Dialogue: []domain.DialogueLine{
					{CharacterName: "WALT", Text: "My name is Walter Hartwell White."},
				},
			},
		},
	}
	indexer := NewIndexer(store, nil, nil)
	_, err = indexer.Index(context.Background(), script)
	require.NoError(t, err)

	svc := NewSearch(store, nil, nil, nil, searchTestConfig())
	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "walt"})
	require.NoError(t, err)

	require.Len(t, resp.BibleResults, 1)
	assert.Equal(t, "WALT", resp.BibleResults[0].Name)
}
