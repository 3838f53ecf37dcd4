package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SceneType distinguishes interior from exterior scenes.
type SceneType string

// Recognised scene types.
const (
	SceneInterior SceneType = "INT"
	SceneExterior SceneType = "EXT"
)

// DialogueLine is a single spoken line within a scene.
type DialogueLine struct {
	// CharacterName is the speaker as written in the source.
	CharacterName string

	// Text is the spoken dialogue.
	Text string

	// Parenthetical is the optional delivery note, e.g. "(whispering)".
	Parenthetical string
}

// Scene is the unit of searchable content. Its identity is the content
// hash derived from normalised text: reformatting a scene does not change
// its hash, changing dialogue or action does. Two scenes with identical
// content in different scripts legitimately share a hash.
type Scene struct {
	// ScriptID links to the owning Script.
	ScriptID string

	// SceneNumber is the position within the script. It is mutable:
	// reordering a script renumbers scenes without changing their hashes.
	SceneNumber int

	// SceneType is interior or exterior.
	SceneType SceneType

	// Location is the scene heading location, e.g. "RV - DESERT".
	Location string

	// TimeOfDay is the scene heading time, e.g. "DAY", "NIGHT".
	TimeOfDay string

	// ActionText is the scene description / action content.
	ActionText string

	// Dialogue is the ordered list of spoken lines.
	Dialogue []DialogueLine

	// Season and Episode are optional series coordinates (0 = unset).
	Season  int
	Episode int

	// Extra holds structured metadata extracted alongside the source
	// content. It is indexer input, never reparsed.
	Extra map[string]any
}

// normalise lowercases and collapses all runs of whitespace to single
// spaces. It keeps the hash stable under reformatting without collapsing
// semantically distinct text.
func normalise(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizedText renders the scene's semantic content in a canonical form.
// Each field is prefixed with a tag so that content moving between fields
// (say, action text becoming dialogue) produces a different hash.
// SceneNumber, Season and Episode are deliberately excluded: position and
// series coordinates are not content.
func (s *Scene) NormalizedText() string {
	var b strings.Builder
	b.WriteString("type:")
	b.WriteString(normalise(string(s.SceneType)))
	b.WriteString("\nloc:")
	b.WriteString(normalise(s.Location))
	b.WriteString("\ntime:")
	b.WriteString(normalise(s.TimeOfDay))
	b.WriteString("\naction:")
	b.WriteString(normalise(s.ActionText))
	for _, line := range s.Dialogue {
		b.WriteString("\nchar:")
		b.WriteString(normalise(line.CharacterName))
		b.WriteString("|paren:")
		b.WriteString(normalise(line.Parenthetical))
		b.WriteString("|text:")
		b.WriteString(normalise(line.Text))
	}
	return b.String()
}

// Hash returns the scene's content hash: a SHA-256 over the normalised
// text, hex encoded. Pure and deterministic.
func (s *Scene) Hash() string {
	sum := sha256.Sum256([]byte(s.NormalizedText()))
	return hex.EncodeToString(sum[:])
}

// DialogueText joins all spoken lines into one string, for lexical
// matching and embedding input.
func (s *Scene) DialogueText() string {
	parts := make([]string, 0, len(s.Dialogue))
	for _, line := range s.Dialogue {
		parts = append(parts, line.Text)
	}
	return strings.Join(parts, " ")
}

// EmbeddingText is the text fed to the embedding model: action plus
// dialogue, in reading order.
func (s *Scene) EmbeddingText() string {
	action := strings.TrimSpace(s.ActionText)
	dialogue := strings.TrimSpace(s.DialogueText())
	switch {
	case action == "":
		return dialogue
	case dialogue == "":
		return action
	default:
		return action + "\n" + dialogue
	}
}

// Speakers returns the distinct character names appearing in the scene's
// dialogue, in order of first appearance.
func (s *Scene) Speakers() []string {
	seen := make(map[string]bool)
	var speakers []string
	for _, line := range s.Dialogue {
		name := strings.TrimSpace(line.CharacterName)
		if name == "" {
			continue
		}
		key := NormalizeCharacterName(name)
		if !seen[key] {
			seen[key] = true
			speakers = append(speakers, name)
		}
	}
	return speakers
}
