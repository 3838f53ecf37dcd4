package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sluglab/slugline/internal/core/domain"
)

func heistScript() *domain.Script {
	return &domain.Script{
		FilePath:      "/scripts/heist.json",
		Title:         "Heist",
		SeasonNumber:  1,
		EpisodeNumber: 4,
		Scenes: []domain.Scene{
			{
				SceneNumber: 1,
				SceneType:   domain.SceneInterior,
				Location:    "VAULT",
				TimeOfDay:   "NIGHT",
				ActionText:  "The drill bites into steel.",
				Dialogue: []domain.DialogueLine{
					{CharacterName: "MIKE", Text: "Keep it quiet."},
				},
			},
			{
				SceneNumber: 2,
				SceneType:   domain.SceneExterior,
				Location:    "ALLEY",
				TimeOfDay:   "NIGHT",
				ActionText:  "A getaway van idles.",
				Dialogue: []domain.DialogueLine{
					{CharacterName: "JESSE", Text: "Clock is ticking."},
				},
			},
		},
	}
}

func applyScript(t *testing.T, store *SceneStore, script *domain.Script) {
	t.Helper()
	var previous map[string]int
	if rec, err := store.GetScriptRecord(context.Background(), script.FilePath); err == nil {
		previous = rec.HashSet
		script.ID = rec.ID
	}
	changes := domain.DiffHashes(script.HashSet(), previous)
	err := store.ApplyBatch(context.Background(), []domain.BatchItem{{Script: script, Changes: changes}})
	require.NoError(t, err)
}

func TestGetScriptRecordRoundTrip(t *testing.T) {
	store := NewSceneStore()
	ctx := context.Background()

	_, err := store.GetScriptRecord(ctx, "/scripts/heist.json")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	script := heistScript()
	applyScript(t, store, script)

	rec, err := store.GetScriptRecord(ctx, "/scripts/heist.json")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Len(t, rec.HashSet, 2)
	assert.Equal(t, 1, rec.HashSet[script.Scenes[0].Hash()])
}

func TestApplyBatchMoveAndRemove(t *testing.T) {
	store := NewSceneStore()
	ctx := context.Background()
	applyScript(t, store, heistScript())

	// Drop scene two and renumber the survivor.
	script := heistScript()
	removedHash := script.Scenes[1].Hash()
	script.Scenes = script.Scenes[:1]
	script.Scenes[0].SceneNumber = 7
	applyScript(t, store, script)

	rec, err := store.GetScriptRecord(ctx, script.FilePath)
	require.NoError(t, err)
	assert.Len(t, rec.HashSet, 1)
	assert.Equal(t, 7, rec.HashSet[script.Scenes[0].Hash()])

	count, err := store.CountScenesByHash(ctx, removedHash)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchCandidatesPredicates(t *testing.T) {
	store := NewSceneStore()
	ctx := context.Background()
	applyScript(t, store, heistScript())

	free, err := store.SearchCandidates(ctx, domain.SearchQuery{Text: "drill steel"}, 10)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "VAULT", free[0].Location)
	assert.Equal(t, []string{"MIKE"}, free[0].Speakers)

	// Dialogue scoping excludes action-only matches.
	scoped, err := store.SearchCandidates(ctx, domain.SearchQuery{DialogueText: "drill"}, 10)
	require.NoError(t, err)
	assert.Empty(t, scoped)

	byCharacter, err := store.SearchCandidates(ctx, domain.SearchQuery{Characters: []string{"jesse"}}, 10)
	require.NoError(t, err)
	require.Len(t, byCharacter, 1)
	assert.Equal(t, "ALLEY", byCharacter[0].Location)

	ranged, err := store.SearchCandidates(ctx, domain.SearchQuery{
		TimesOfDay: []string{"night"},
		Episodes: &domain.EpisodeRange{
			From: domain.EpisodeRef{Season: 1, Episode: 1},
			To:   domain.EpisodeRef{Season: 1, Episode: 4},
		},
	}, 10)
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestScenesByHashes(t *testing.T) {
	store := NewSceneStore()
	script := heistScript()
	applyScript(t, store, script)

	out, err := store.ScenesByHashes(context.Background(), []string{script.Scenes[1].Hash()})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "A getaway van idles.", out[0].ActionText)
}

func TestResolveSeriesIsStable(t *testing.T) {
	store := NewSceneStore()
	ctx := context.Background()

	first, err := store.ResolveSeries(ctx, "Breaking Bad")
	require.NoError(t, err)
	second, err := store.ResolveSeries(ctx, "Breaking Bad")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCharacterTracking(t *testing.T) {
	store := NewSceneStore()
	ctx := context.Background()

	series, err := store.ResolveSeries(ctx, "Heist Show")
	require.NoError(t, err)

	script := heistScript()
	script.SeriesID = series.ID
	applyScript(t, store, script)

	chars, err := store.SearchCharacters(ctx, []string{"mike"})
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, "MIKE", chars[0].Name)
	assert.Equal(t, series.ID, chars[0].SeriesID)

	counts, err := store.CharacterLineCounts(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["mike"])
	assert.Equal(t, 1, counts["jesse"])
}

func TestCharacterAliasCapture(t *testing.T) {
	store := NewSceneStore()
	ctx := context.Background()

	series, err := store.ResolveSeries(ctx, "Heist Show")
	require.NoError(t, err)

	script := heistScript()
	script.SeriesID = series.ID
	script.Scenes[1].Dialogue = []domain.DialogueLine{
		{CharacterName: "MIKE (V.O.)", Text: "Stay on the plan."},
	}
	applyScript(t, store, script)

	// Both surface forms resolve to one character; the second becomes
	// an alias of the canonical first form.
	chars, err := store.SearchCharacters(ctx, []string{"mike"})
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, "MIKE", chars[0].Name)
	assert.Equal(t, []string{"MIKE (V.O.)"}, chars[0].Aliases)

	// A term matching only the alias still resolves the character.
	byAlias, err := store.SearchCharacters(ctx, []string{"v.o."})
	require.NoError(t, err)
	require.Len(t, byAlias, 1)
	assert.Equal(t, chars[0].ID, byAlias[0].ID)
}
