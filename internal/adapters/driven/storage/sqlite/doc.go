// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SceneStore: scripts, scenes, characters, series, and the FTS5 lexical index
//   - EmbeddingStore: content-addressed scene embeddings keyed by (hash, model)
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. The scene_fts virtual table shares its rowid with the
// scenes table and is written in the same transaction, so the lexical index
// can never drift from the scene rows.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode, with a bounded connection pool and a busy timeout so
// concurrent readers never block behind a writer indefinitely.
package sqlite
