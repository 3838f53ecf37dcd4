// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): storage, the screenplay parser and the
// language-model collaborators.
package driven
