// Package domain contains the core screenplay-index types and the pure
// logic that operates on them: content hashing, change detection inputs,
// query parsing and the error taxonomy. Nothing in this package touches
// storage or the network.
package domain
