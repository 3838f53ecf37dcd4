package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() Scene {
	return Scene{
		ScriptID:    "script-1",
		SceneNumber: 3,
		SceneType:   SceneInterior,
		Location:    "RV - DESERT",
		TimeOfDay:   "DAY",
		ActionText:  "Walter cooks. Jesse watches nervously.",
		Dialogue: []DialogueLine{
			{CharacterName: "WALTER", Text: "Say my name."},
			{CharacterName: "JESSE", Text: "You're Heisenberg.", Parenthetical: "(quietly)"},
		},
	}
}

func TestScene_Hash_StableUnderReformatting(t *testing.T) {
	a := testScene()
	b := testScene()
	b.ActionText = "  Walter   cooks.\n\tJesse watches   nervously.  "
	b.Dialogue[0].Text = "Say  my\nname."

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestScene_Hash_CaseInsensitive(t *testing.T) {
	a := testScene()
	b := testScene()
	b.ActionText = "WALTER COOKS. JESSE WATCHES NERVOUSLY."

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestScene_Hash_ChangesWithContent(t *testing.T) {
	a := testScene()

	b := testScene()
	b.Dialogue[0].Text = "Say my name!"
	assert.NotEqual(t, a.Hash(), b.Hash())

	c := testScene()
	c.ActionText = "Walter cooks alone."
	assert.NotEqual(t, a.Hash(), c.Hash())

	d := testScene()
	d.Location = "RV - HIGHWAY"
	assert.NotEqual(t, a.Hash(), d.Hash())
}

func TestScene_Hash_IgnoresPosition(t *testing.T) {
	a := testScene()
	b := testScene()
	b.SceneNumber = 42
	b.ScriptID = "script-other"

	// Identical content in another script at another position shares the hash.
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestScene_Hash_FieldsDoNotCollide(t *testing.T) {
	a := Scene{ActionText: "night"}
	b := Scene{TimeOfDay: "night"}

	// The same text in different fields is semantically distinct.
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestScene_Speakers(t *testing.T) {
	s := testScene()
	s.Dialogue = append(s.Dialogue, DialogueLine{CharacterName: "WALTER (V.O.)", Text: "..."})

	speakers := s.Speakers()

	// WALTER (V.O.) normalises to the same speaker as WALTER.
	require.Len(t, speakers, 2)
	assert.Equal(t, []string{"WALTER", "JESSE"}, speakers)
}

func TestScene_EmbeddingText(t *testing.T) {
	s := testScene()
	text := s.EmbeddingText()

	assert.Contains(t, text, "Walter cooks.")
	assert.Contains(t, text, "Say my name.")

	empty := Scene{}
	assert.Empty(t, empty.EmbeddingText())
}
