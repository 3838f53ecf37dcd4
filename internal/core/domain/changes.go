package domain

// ChangeSet is the outcome of comparing a script's current content
// hashes against the last-indexed set.
type ChangeSet struct {
	// Added holds hashes present now but not in the previous index.
	Added []string

	// Removed holds hashes that disappeared from the script.
	Removed []string

	// Moved maps hashes whose content is unchanged but whose scene
	// number differs. These are number rewrites only: the lexical and
	// vector indexes for the hash are left untouched.
	Moved map[string]int
}

// Empty reports whether the change set requires no work at all.
func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Moved) == 0
}

// DiffHashes computes the change set between the current and previously
// indexed hash→scene-number maps in O(n) set operations. A missing
// previous set (first index) yields everything as added.
func DiffHashes(current, previous map[string]int) ChangeSet {
	var set ChangeSet
	set.Moved = make(map[string]int)

	for hash, number := range current {
		prevNumber, ok := previous[hash]
		switch {
		case !ok:
			set.Added = append(set.Added, hash)
		case prevNumber != number:
			set.Moved[hash] = number
		}
	}

	for hash := range previous {
		if _, ok := current[hash]; !ok {
			set.Removed = append(set.Removed, hash)
		}
	}

	return set
}

// BatchItem pairs a parsed script with its computed change set for
// transactional application by the store.
type BatchItem struct {
	Script  *Script
	Changes ChangeSet
}

// IndexReport summarises one indexing run for a script.
type IndexReport struct {
	// Added is the number of newly indexed scenes.
	Added int

	// Updated is the number of scenes whose position was occupied by
	// different content in the previous index (a replace at the same
	// scene number).
	Updated int

	// Removed is the number of scenes deleted from the index.
	Removed int

	// Moved is the number of unchanged scenes that only changed position.
	Moved int

	// Errors holds non-fatal per-scene problems, such as a failed
	// embedding that degrades the scene to lexical-only search.
	Errors []string

	// NoOp is true when the hash set was unchanged and storage was not
	// touched.
	NoOp bool
}
