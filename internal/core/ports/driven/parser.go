package driven

import (
	"context"

	"github.com/sluglab/slugline/internal/core/domain"
)

// ScriptParser turns a source document into a structured script with
// ordered scenes. The screenplay grammar itself is an external
// collaborator; the core only requires well-formed structured output
// with stable scene ordering.
type ScriptParser interface {
	// Parse reads and parses the file at path. Parse failures are
	// classified as PARSING errors by the importer.
	Parse(ctx context.Context, path string) (*domain.Script, error)
}
