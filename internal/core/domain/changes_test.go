package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffHashes_FirstIndex(t *testing.T) {
	current := map[string]int{"h1": 1, "h2": 2, "h3": 3}

	set := DiffHashes(current, nil)

	assert.ElementsMatch(t, []string{"h1", "h2", "h3"}, set.Added)
	assert.Empty(t, set.Removed)
	assert.Empty(t, set.Moved)
}

func TestDiffHashes_NoChanges(t *testing.T) {
	hashes := map[string]int{"h1": 1, "h2": 2}

	set := DiffHashes(hashes, map[string]int{"h1": 1, "h2": 2})

	assert.True(t, set.Empty())
}

func TestDiffHashes_AddRemove(t *testing.T) {
	current := map[string]int{"h1": 1, "h3": 2}
	previous := map[string]int{"h1": 1, "h2": 2}

	set := DiffHashes(current, previous)

	assert.Equal(t, []string{"h3"}, set.Added)
	assert.Equal(t, []string{"h2"}, set.Removed)
	assert.Empty(t, set.Moved)
}

func TestDiffHashes_MovedIsNotAnUpdate(t *testing.T) {
	// Scene h2 moved from position 2 to 3; content unchanged.
	current := map[string]int{"h1": 1, "h2": 3}
	previous := map[string]int{"h1": 1, "h2": 2}

	set := DiffHashes(current, previous)

	assert.Empty(t, set.Added)
	assert.Empty(t, set.Removed)
	assert.Equal(t, map[string]int{"h2": 3}, set.Moved)
}
