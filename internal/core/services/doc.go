// Package services implements the core use cases: incremental indexing,
// hybrid search and transactional bulk import. Services depend only on
// the port interfaces; adapters are injected through constructors.
package services
