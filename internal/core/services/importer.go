package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
	"github.com/sluglab/slugline/internal/core/ports/driving"
	"github.com/sluglab/slugline/internal/logger"
)

// Ensure Importer implements the interface.
var _ driving.BulkImporter = (*Importer)(nil)

const defaultBatchSize = 10

// Importer is the bulk-ingestion orchestrator. Files are processed in
// batches of one storage transaction each; per-file progress and the
// cross-batch series cache are persisted after every batch so an
// interrupted run resumes where it stopped.
type Importer struct {
	parser     driven.ScriptParser
	store      driven.SceneStore
	stateStore driven.ImportStateStore
	indexer    *Indexer
}

// NewImporter creates a bulk importer.
func NewImporter(
	parser driven.ScriptParser,
	store driven.SceneStore,
	stateStore driven.ImportStateStore,
	indexer *Indexer,
) *Importer {
	return &Importer{
		parser:     parser,
		store:      store,
		stateStore: stateStore,
		indexer:    indexer,
	}
}

// Import runs the batch state machine over the given files.
func (im *Importer) Import(
	ctx context.Context, paths []string, opts domain.ImportOptions,
) (*domain.ImportSummary, error) {
	start := time.Now()
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	state, resumed, err := im.loadState(ctx, opts, paths)
	if err != nil {
		return nil, err
	}

	summary := &domain.ImportSummary{Resumed: resumed}
	queue := im.pending(state, paths)
	logger.Info("Import: %d of %d files queued (batch size %d)", len(queue), len(paths), opts.BatchSize)

	for len(queue) > 0 {
		// Cooperative cancellation point: only between batches, so an
		// in-flight batch always commits or rolls back cleanly.
		select {
		case <-ctx.Done():
			im.saveState(ctx, opts.StateFile, state)
			summarise(state, paths, summary, time.Since(start))
			return summary, fmt.Errorf("%w: %v", domain.ErrImportCancelled, ctx.Err())
		default:
		}

		batch := queue
		if len(batch) > opts.BatchSize {
			batch = batch[:opts.BatchSize]
		}
		queue = queue[len(batch):]

		batchErrs := im.processBatch(ctx, batch, state, opts)
		summary.Errors = append(summary.Errors, batchErrs...)

		im.saveState(ctx, opts.StateFile, state)
	}

	summarise(state, paths, summary, time.Since(start))
	logger.Info("Import complete: %d succeeded, %d failed, %d skipped",
		summary.Succeeded, summary.Failed, summary.Skipped)
	return summary, nil
}

// loadState resumes persisted state when present, otherwise starts a
// fresh run. New paths are merged in as pending; RetryFailed re-queues
// recorded failures.
func (im *Importer) loadState(
	ctx context.Context, opts domain.ImportOptions, paths []string,
) (*domain.ImportState, bool, error) {
	var state *domain.ImportState
	resumed := false

	if im.stateStore != nil && opts.StateFile != "" {
		loaded, err := im.stateStore.Load(ctx, opts.StateFile)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// Fresh run.
		case err != nil:
			return nil, false, fmt.Errorf("load import state: %w", err)
		default:
			state = loaded
			resumed = true
			logger.Info("Resuming import run %s", state.RunID)
		}
	}

	if state == nil {
		state = domain.NewImportState(uuid.NewString(), opts.BatchSize, paths)
	} else {
		for _, p := range paths {
			if _, ok := state.Files[p]; !ok {
				state.Files[p] = domain.FileState{Status: domain.StatusPending}
			}
		}
	}
	if state.SeriesCache == nil {
		state.SeriesCache = make(map[string]string)
	}

	if opts.RetryFailed {
		for path, fs := range state.Files {
			if fs.Status == domain.StatusFailed {
				fs.Status = domain.StatusRetryPending
				fs.Error = ""
				fs.Category = ""
				state.Files[path] = fs
			}
		}
	}

	return state, resumed, nil
}

// pending returns the requested paths still needing work, in stable order.
func (im *Importer) pending(state *domain.ImportState, paths []string) []string {
	var queue []string
	for _, p := range paths {
		switch state.Files[p].Status {
		case domain.StatusPending, domain.StatusRetryPending:
			queue = append(queue, p)
		}
	}
	sort.Strings(queue)
	return queue
}

// processBatch validates every file in the batch first, then applies the
// surviving files' writes in one transaction. Validation failures (parse,
// schema, planning) mark only the failing file and never block healthy
// siblings from committing. A write-phase failure rolls the whole
// transaction back: the file storage blames is marked failed, siblings
// return to pending for the next run.
func (im *Importer) processBatch(
	ctx context.Context, batch []string, state *domain.ImportState, opts domain.ImportOptions,
) []*domain.ImportError {
	if opts.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.BatchTimeout)
		defer cancel()
	}

	var importErrs []*domain.ImportError
	fail := func(ierr *domain.ImportError) {
		importErrs = append(importErrs, ierr)
		state.Files[ierr.Path] = domain.FileState{
			Status:      domain.StatusFailed,
			Error:       ierr.Err.Error(),
			Category:    ierr.Category,
			LastAttempt: time.Now().UTC(),
		}
		logger.Warn("Import %s failed (%s): %v. Suggestion: %s",
			ierr.Path, ierr.Category, ierr.Err, ierr.Suggestion())
	}

	// Validation phase: parse and plan every file before writing
	// anything. Files failing here are weeded out of the write phase so
	// a malformed source never costs its siblings their commit.
	type planned struct {
		path   string
		script *domain.Script
		item   domain.BatchItem
	}
	var plans []planned

	for _, path := range batch {
		script, ierr := im.prepare(ctx, path, state)
		if ierr != nil {
			fail(ierr)
			continue
		}

		changes, report, err := im.indexer.Plan(ctx, script)
		if err != nil {
			fail(Classify(path, err))
			continue
		}
		if report.NoOp {
			state.Files[path] = domain.FileState{
				Status:      domain.StatusSkipped,
				ScriptID:    script.ID,
				LastAttempt: time.Now().UTC(),
			}
			continue
		}
		plans = append(plans, planned{path: path, script: script, item: domain.BatchItem{Script: script, Changes: changes}})
	}

	if len(plans) == 0 {
		return importErrs
	}

	// Embeddings are content-addressed and idempotent, so they are
	// generated outside the transaction; failures degrade per scene.
	for i := range plans {
		report := &domain.IndexReport{}
		im.indexer.EnsureEmbeddings(ctx, plans[i].script, plans[i].item.Changes.Added, report)
		for _, msg := range report.Errors {
			logger.Warn("Import %s: %s", plans[i].path, msg)
		}
	}

	items := make([]domain.BatchItem, len(plans))
	for i := range plans {
		items[i] = plans[i].item
	}

	if err := im.store.ApplyBatch(ctx, items); err != nil {
		// The whole transaction rolled back.
		var ierr *domain.ImportError
		if errors.As(err, &ierr) {
			// Storage identified the failing file. Mark only it;
			// siblings return to pending for the next run.
			fail(ierr)
		} else {
			// Batch-wide failure (commit, connection). No single file is
			// to blame, so every planned file is recorded as a retryable
			// storage failure.
			for i := range plans {
				fail(&domain.ImportError{
					Path:     plans[i].path,
					Category: domain.CategoryDatabase,
					Err:      err,
				})
			}
		}
		return importErrs
	}

	now := time.Now().UTC()
	for i := range plans {
		state.Files[plans[i].path] = domain.FileState{
			Status:      domain.StatusSuccess,
			ScriptID:    plans[i].script.ID,
			LastAttempt: now,
		}
		im.indexer.PurgeEmbeddings(ctx, plans[i].item.Changes.Removed)
	}

	return importErrs
}

// prepare parses, validates and series-resolves a single file.
func (im *Importer) prepare(
	ctx context.Context, path string, state *domain.ImportState,
) (*domain.Script, *domain.ImportError) {
	script, err := im.parser.Parse(ctx, path)
	if err != nil {
		return nil, Classify(path, err)
	}
	if script.FilePath == "" {
		script.FilePath = path
	}

	if err := validateScript(script); err != nil {
		return nil, &domain.ImportError{Path: path, Category: domain.CategoryValidation, Err: err}
	}

	if script.SeriesName != "" && script.SeriesID == "" {
		if id, ok := state.SeriesCache[script.SeriesName]; ok {
			script.SeriesID = id
		} else {
			series, err := im.store.ResolveSeries(ctx, script.SeriesName)
			if err != nil {
				return nil, Classify(path, err)
			}
			script.SeriesID = series.ID
			state.SeriesCache[script.SeriesName] = series.ID
		}
	}

	return script, nil
}

// validateScript enforces the schema invariants the indexer relies on.
func validateScript(script *domain.Script) error {
	if len(script.Scenes) == 0 {
		return fmt.Errorf("%w: script has no scenes", domain.ErrInvalidInput)
	}
	for i := range script.Scenes {
		if script.Scenes[i].SceneNumber <= 0 {
			return fmt.Errorf("%w: scene %d has no scene number", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}

// saveState persists progress; a failed save is logged, never fatal.
func (im *Importer) saveState(ctx context.Context, path string, state *domain.ImportState) {
	if im.stateStore == nil || path == "" {
		return
	}
	if err := im.stateStore.Save(ctx, path, state); err != nil {
		logger.Warn("Persisting import state failed: %v", err)
	}
}

// summarise fills final counts for the requested paths.
func summarise(state *domain.ImportState, paths []string, summary *domain.ImportSummary, elapsed time.Duration) {
	for _, p := range paths {
		switch state.Files[p].Status {
		case domain.StatusSuccess:
			summary.Succeeded++
		case domain.StatusFailed:
			summary.Failed++
		case domain.StatusSkipped:
			summary.Skipped++
		}
	}
	summary.Duration = elapsed
}

// Classify maps an error to its import category. Parser and storage
// adapters may pre-classify by returning *domain.ImportError themselves.
func Classify(path string, err error) *domain.ImportError {
	var ierr *domain.ImportError
	if errors.As(err, &ierr) {
		return ierr
	}

	category := domain.CategoryUnknown
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		category = domain.CategoryFilesystem
	case errors.Is(err, domain.ErrInvalidInput):
		category = domain.CategoryValidation
	case isDatabaseError(err):
		category = domain.CategoryDatabase
	case isParseError(err):
		category = domain.CategoryParsing
	}

	return &domain.ImportError{Path: path, Category: category, Err: err}
}

func isDatabaseError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database") ||
		strings.Contains(msg, "sql") ||
		strings.Contains(msg, "locked") ||
		strings.Contains(msg, "busy") ||
		strings.Contains(msg, "constraint")
}

func isParseError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "parse") ||
		strings.Contains(msg, "syntax") ||
		strings.Contains(msg, "unmarshal") ||
		strings.Contains(msg, "unexpected")
}
