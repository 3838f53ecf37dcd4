package driven

import (
	"context"

	"github.com/sluglab/slugline/internal/core/domain"
)

// ScriptRecord is the stored view of a script needed for change
// detection: its identity plus the hash→scene-number map last written.
type ScriptRecord struct {
	// ID is the script's internal identifier.
	ID string

	// FilePath is the script's identity.
	FilePath string

	// HashSet maps content hash to scene number as last indexed.
	HashSet map[string]int
}

// SceneStore persists scripts, scenes, characters and series, and
// maintains the lexical index alongside them.
//
// ApplyBatch is the single write entry point: every item's change set is
// applied inside one transaction, so a failure anywhere rolls back the
// whole batch. A returned *domain.ImportError identifies the failing
// script.
type SceneStore interface {
	// GetScriptRecord returns the last-indexed state for a file path,
	// or domain.ErrNotFound when the script has never been indexed.
	GetScriptRecord(ctx context.Context, filePath string) (*ScriptRecord, error)

	// ApplyBatch applies all change sets in one transaction.
	ApplyBatch(ctx context.Context, items []domain.BatchItem) error

	// SearchCandidates retrieves unranked candidate scenes for a query,
	// pushing character/location/time/episode filters down to storage.
	// limit bounds the candidate set, not the final page.
	SearchCandidates(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Candidate, error)

	// ScenesByHashes hydrates candidates for semantic hits.
	ScenesByHashes(ctx context.Context, hashes []string) ([]domain.Candidate, error)

	// CountScenesByHash reports how many scene rows reference a hash,
	// across all scripts. Embedding deletion is safe only at zero.
	CountScenesByHash(ctx context.Context, hash string) (int, error)

	// ResolveSeries returns the series with the given name, creating it
	// if missing. Idempotent.
	ResolveSeries(ctx context.Context, name string) (*domain.Series, error)

	// SearchCharacters returns characters whose name or alias contains
	// any of the given terms.
	SearchCharacters(ctx context.Context, terms []string) ([]domain.Character, error)

	// CharacterLineCounts returns dialogue line counts per normalised
	// character name for a series.
	CharacterLineCounts(ctx context.Context, seriesID string) (map[string]int, error)
}
