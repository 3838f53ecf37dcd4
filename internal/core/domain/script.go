package domain

import (
	"strings"
	"time"
)

// Script is a named document owning an ordered sequence of scenes.
// FilePath is its identity.
type Script struct {
	// ID is the stable internal identifier (assigned on first index).
	ID string

	// FilePath is the source document path and the script's identity.
	FilePath string

	// Title is the human-readable script title.
	Title string

	// FormatType names the source format, e.g. "fountain", "fdx".
	FormatType string

	// SeriesName is the series name as found in the source. Resolved to
	// SeriesID during indexing.
	SeriesName string

	// SeriesID links to the owning Series, if any.
	SeriesID string

	// SeasonNumber and EpisodeNumber are optional coordinates (0 = unset).
	SeasonNumber  int
	EpisodeNumber int

	// Scenes is the ordered scene list.
	Scenes []Scene

	// IndexedAt is when the script was last written to the index.
	IndexedAt time.Time
}

// HashSet returns the map of content hash to scene number for the
// script's current scenes. This is the input to change detection.
// Scenes sharing a hash within one script collapse to the first position.
func (s *Script) HashSet() map[string]int {
	set := make(map[string]int, len(s.Scenes))
	for i := range s.Scenes {
		h := s.Scenes[i].Hash()
		if _, ok := set[h]; !ok {
			set[h] = s.Scenes[i].SceneNumber
		}
	}
	return set
}

// Series groups scripts and owns characters for cross-script identity
// resolution.
type Series struct {
	// ID is the unique series identifier.
	ID string

	// Name is the display name.
	Name string

	// CreatedAt is when the series was first seen.
	CreatedAt time.Time
}

// Character is an identity scoped to a series. One character exists per
// normalised name per series; aliases resolve to the same character.
type Character struct {
	// ID is SeriesID + "/" + the normalised name.
	ID string

	// SeriesID links to the owning Series.
	SeriesID string

	// Name is the canonical display name.
	Name string

	// NormalizedName is the lookup key within the series.
	NormalizedName string

	// Aliases are alternative names resolving to this character.
	Aliases []string
}

// NormalizeCharacterName produces the deterministic lookup key for a
// character name: lowercased, whitespace collapsed, trailing
// parentheticals such as "(V.O.)" or "(CONT'D)" stripped.
func NormalizeCharacterName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '('); i > 0 {
		name = name[:i]
	}
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// CharacterID derives a character's identity from its series and name.
// Idempotent across re-index runs.
func CharacterID(seriesID, name string) string {
	return seriesID + "/" + NormalizeCharacterName(name)
}
