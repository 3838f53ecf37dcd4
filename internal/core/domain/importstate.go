package domain

import "time"

// FileStatus is the per-file state in a bulk import run.
type FileStatus string

// Import state machine: pending → (success | failed | skipped);
// failed → retry_pending → (success | failed).
const (
	StatusPending      FileStatus = "pending"
	StatusSuccess      FileStatus = "success"
	StatusFailed       FileStatus = "failed"
	StatusRetryPending FileStatus = "retry_pending"
	StatusSkipped      FileStatus = "skipped"
)

// Terminal reports whether the status needs no further processing.
func (s FileStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusSkipped
}

// FileState tracks one file's progress through a bulk import.
// JSON tags keep the persisted layout stable; unknown fields in older
// or newer state files are ignored on load.
type FileState struct {
	Status      FileStatus    `json:"status"`
	Error       string        `json:"error,omitempty"`
	Category    ErrorCategory `json:"category,omitempty"`
	LastAttempt time.Time     `json:"last_attempt,omitempty"`
	ScriptID    string        `json:"script_id,omitempty"`
}

// ImportState is the persisted record of a bulk import run. It is saved
// after every batch so a crashed run can resume without re-validating
// files that already succeeded.
type ImportState struct {
	// RunID identifies the import run.
	RunID string `json:"run_id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// BatchSize is the configured batch size for the run.
	BatchSize int `json:"batch_size"`

	// Files maps file path to its state.
	Files map[string]FileState `json:"files"`

	// SeriesCache maps series name to resolved series ID, carried across
	// batches so lookups are not repeated.
	SeriesCache map[string]string `json:"series_cache,omitempty"`
}

// NewImportState initialises state for a fresh run.
func NewImportState(runID string, batchSize int, paths []string) *ImportState {
	files := make(map[string]FileState, len(paths))
	for _, p := range paths {
		files[p] = FileState{Status: StatusPending}
	}
	return &ImportState{
		RunID:       runID,
		StartedAt:   time.Now().UTC(),
		BatchSize:   batchSize,
		Files:       files,
		SeriesCache: make(map[string]string),
	}
}

// Done reports whether every file has reached a terminal or
// permanently-failed state.
func (s *ImportState) Done() bool {
	for _, f := range s.Files {
		if f.Status == StatusPending || f.Status == StatusRetryPending {
			return false
		}
	}
	return true
}

// ImportOptions configures a bulk import run.
type ImportOptions struct {
	// BatchSize is the number of files per transaction (default 10).
	BatchSize int

	// RetryFailed re-queues files recorded as failed in the state file.
	RetryFailed bool

	// StateFile is the path of the persisted import state.
	StateFile string

	// BatchTimeout bounds validation plus write time for one batch.
	BatchTimeout time.Duration
}

// ImportSummary reports the outcome of a bulk import run.
type ImportSummary struct {
	// Succeeded, Failed and Skipped count files by final status.
	Succeeded int
	Failed    int
	Skipped   int

	// Errors holds the per-file failures from this run.
	Errors []*ImportError

	// Duration is the wall-clock run time.
	Duration time.Duration

	// Resumed is true when the run continued from persisted state.
	Resumed bool
}
