package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
	"github.com/sluglab/slugline/internal/core/ports/driving"
	"github.com/sluglab/slugline/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexerService = (*Indexer)(nil)

// Indexer keeps the store consistent with source scripts through
// content-hash change detection. All writes for one script happen in a
// single transaction; embeddings are generated outside it because they
// are content-addressed and idempotent.
type Indexer struct {
	store      driven.SceneStore
	embedStore driven.EmbeddingStore
	embedder   driven.EmbeddingService
}

// NewIndexer creates an indexer. The embedder is optional; when nil,
// scenes are indexed for lexical search only.
func NewIndexer(
	store driven.SceneStore,
	embedStore driven.EmbeddingStore,
	embedder driven.EmbeddingService,
) *Indexer {
	return &Indexer{
		store:      store,
		embedStore: embedStore,
		embedder:   embedder,
	}
}

// Index applies one script's current content to the store.
func (ix *Indexer) Index(ctx context.Context, script *domain.Script) (*domain.IndexReport, error) {
	if script == nil || script.FilePath == "" {
		return nil, fmt.Errorf("%w: script must have a file path", domain.ErrInvalidInput)
	}

	set, report, err := ix.Plan(ctx, script)
	if err != nil {
		return nil, err
	}
	if report.NoOp {
		logger.Debug("Index %s: hash set unchanged, nothing to do", script.FilePath)
		return report, nil
	}

	ix.EnsureEmbeddings(ctx, script, set.Added, report)

	if err := ix.store.ApplyBatch(ctx, []domain.BatchItem{{Script: script, Changes: set}}); err != nil {
		return nil, fmt.Errorf("apply changes: %w", err)
	}

	ix.PurgeEmbeddings(ctx, set.Removed)

	logger.Info("Indexed %s: %d added, %d updated, %d removed, %d moved",
		script.FilePath, report.Added, report.Updated, report.Removed, report.Moved)
	return report, nil
}

// Plan computes the change set and report for a script without writing
// anything. A nil previous record (first index) yields everything added.
func (ix *Indexer) Plan(ctx context.Context, script *domain.Script) (domain.ChangeSet, *domain.IndexReport, error) {
	var previous map[string]int
	rec, err := ix.store.GetScriptRecord(ctx, script.FilePath)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// First index: treat everything as added.
	case err != nil:
		return domain.ChangeSet{}, nil, fmt.Errorf("load script record: %w", err)
	default:
		previous = rec.HashSet
		script.ID = rec.ID
	}

	current := script.HashSet()
	set := domain.DiffHashes(current, previous)

	report := &domain.IndexReport{
		Added:   len(set.Added),
		Removed: len(set.Removed),
		Moved:   len(set.Moved),
	}
	if set.Empty() && previous != nil {
		report.NoOp = true
		return set, report, nil
	}

	// An added hash landing on a scene number that previously held a
	// removed hash is a content update at that position.
	prevByNumber := make(map[int]string, len(previous))
	for hash, number := range previous {
		prevByNumber[number] = hash
	}
	removed := make(map[string]bool, len(set.Removed))
	for _, hash := range set.Removed {
		removed[hash] = true
	}
	for _, hash := range set.Added {
		if old, ok := prevByNumber[current[hash]]; ok && removed[old] {
			report.Updated++
		}
	}

	return set, report, nil
}

// EnsureEmbeddings generates and stores vectors for the added hashes.
// Failures degrade the affected scene to lexical-only search and are
// recorded on the report; they never fail the indexing transaction.
func (ix *Indexer) EnsureEmbeddings(ctx context.Context, script *domain.Script, added []string, report *domain.IndexReport) {
	if ix.embedder == nil || ix.embedStore == nil || len(added) == 0 {
		return
	}

	wanted := make(map[string]bool, len(added))
	for _, hash := range added {
		wanted[hash] = true
	}

	model := ix.embedder.ModelName()
	for i := range script.Scenes {
		scene := &script.Scenes[i]
		hash := scene.Hash()
		if !wanted[hash] {
			continue
		}
		wanted[hash] = false // one embedding per hash

		if _, err := ix.embedStore.Get(ctx, hash, model); err == nil {
			continue // already cached under this hash
		} else if !errors.Is(err, domain.ErrNotFound) {
			report.Errors = append(report.Errors, fmt.Sprintf("embedding lookup %s: %v", hash[:12], err))
			continue
		}

		vector, err := ix.embedder.Embed(ctx, scene.EmbeddingText())
		if err != nil {
			logger.Warn("Embedding failed for scene %d of %s: %v", scene.SceneNumber, script.FilePath, err)
			report.Errors = append(report.Errors, fmt.Sprintf("embed scene %d: %v", scene.SceneNumber, err))
			continue
		}
		if err := ix.embedStore.Put(ctx, hash, model, vector); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("store embedding %s: %v", hash[:12], err))
		}
	}
}

// PurgeEmbeddings removes vectors for hashes no scene references any
// more. Content addressing makes this safe: a hash shared with another
// script keeps its vector.
func (ix *Indexer) PurgeEmbeddings(ctx context.Context, removed []string) {
	if ix.embedStore == nil || ix.embedder == nil {
		return
	}
	model := ix.embedder.ModelName()
	for _, hash := range removed {
		count, err := ix.store.CountScenesByHash(ctx, hash)
		if err != nil {
			logger.Warn("Reference count for %s failed: %v", hash[:12], err)
			continue
		}
		if count > 0 {
			continue
		}
		if err := ix.embedStore.Delete(ctx, hash, model); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Purge embedding %s failed: %v", hash[:12], err)
		}
	}
}
