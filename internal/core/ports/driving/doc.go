// Package driving provides interfaces for the use cases exposed to the
// CLI and other presentation layers (primary/inbound ports).
package driving
