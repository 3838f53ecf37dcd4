package jsonfile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sluglab/slugline/internal/core/domain"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseFullScript(t *testing.T) {
	path := writeScript(t, `{
		"title": "Pilot",
		"format": "Fountain",
		"series": "Breaking Bad",
		"season": 1,
		"episode": 1,
		"scenes": [
			{
				"number": 1,
				"type": "EXT.",
				"location": "RV - DESERT",
				"time_of_day": "DAY",
				"action": "A battered RV bounces across the desert.",
				"dialogue": [
					{"character": "WALT", "text": "My name is Walter Hartwell White.", "parenthetical": "(into camera)"}
				]
			}
		]
	}`)

	script, err := NewParser().Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, script.FilePath)
	assert.Equal(t, "Pilot", script.Title)
	assert.Equal(t, "fountain", script.FormatType)
	assert.Equal(t, "Breaking Bad", script.SeriesName)
	assert.Equal(t, 1, script.SeasonNumber)

	require.Len(t, script.Scenes, 1)
	scene := script.Scenes[0]
	assert.Equal(t, 1, scene.SceneNumber)
	assert.Equal(t, domain.SceneExterior, scene.SceneType)
	assert.Equal(t, "RV - DESERT", scene.Location)
	require.Len(t, scene.Dialogue, 1)
	assert.Equal(t, "WALT", scene.Dialogue[0].CharacterName)
	assert.Equal(t, "(into camera)", scene.Dialogue[0].Parenthetical)
}

func TestParseDefaultsSceneNumbersToPosition(t *testing.T) {
	path := writeScript(t, `{
		"title": "Pilot",
		"scenes": [
			{"location": "A", "action": "first"},
			{"location": "B", "action": "second"}
		]
	}`)

	script, err := NewParser().Parse(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, script.Scenes, 2)
	assert.Equal(t, 1, script.Scenes[0].SceneNumber)
	assert.Equal(t, 2, script.Scenes[1].SceneNumber)
}

func TestParseSceneTypes(t *testing.T) {
	cases := map[string]domain.SceneType{
		"INT.":      domain.SceneInterior,
		"int":       domain.SceneInterior,
		"INT./EXT.": domain.SceneInterior,
		"EXT.":      domain.SceneExterior,
		"ext ":      domain.SceneExterior,
	}
	for raw, want := range cases {
		assert.Equal(t, want, sceneType(raw), "type %q", raw)
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), "/no/such/script.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseMalformedJSON(t *testing.T) {
	path := writeScript(t, `{"title": "Pilot", "scenes": [`)
	_, err := NewParser().Parse(context.Background(), path)
	assert.Error(t, err)
}

func TestParseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewParser().Parse(ctx, "/irrelevant.json")
	assert.ErrorIs(t, err, context.Canceled)
}
