package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidQuery indicates the search query could not be parsed.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Semantic search is disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrImportCancelled indicates a bulk import stopped at a batch
	// boundary because its context was cancelled.
	ErrImportCancelled = errors.New("import cancelled")
)

// ErrorCategory classifies import and indexing failures for reporting
// and retry decisions.
type ErrorCategory string

// Import error categories.
const (
	CategoryParsing    ErrorCategory = "PARSING"
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryDatabase   ErrorCategory = "DATABASE"
	CategoryFilesystem ErrorCategory = "FILESYSTEM"
	CategoryUnknown    ErrorCategory = "UNKNOWN"
)

// Retryable reports whether failures in this category are worth retrying
// without user action. Structural categories (malformed source, schema
// violations) are not auto-retried.
func (c ErrorCategory) Retryable() bool {
	return c == CategoryDatabase
}

// Suggestion returns an actionable hint for the user.
func (c ErrorCategory) Suggestion() string {
	switch c {
	case CategoryParsing:
		return "fix the source file, then re-run with --retry-failed"
	case CategoryValidation:
		return "check the script for missing scenes or malformed headings"
	case CategoryDatabase:
		return "transient storage error; re-run with --retry-failed"
	case CategoryFilesystem:
		return "check that the file exists and is readable"
	default:
		return "re-run with --verbose for full diagnostics"
	}
}

// ImportError wraps a failure with its category and the file it belongs
// to. Import errors never abort unrelated files.
type ImportError struct {
	Path     string
	Category ErrorCategory
	Err      error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Category, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ImportError) Unwrap() error {
	return e.Err
}

// Suggestion returns the category's actionable hint.
func (e *ImportError) Suggestion() string {
	return e.Category.Suggestion()
}
