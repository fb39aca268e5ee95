// Package logging provides a unified logging interface for tallyrun.
// It abstracts the underlying logging implementation, allowing consistent logging
// across the coordinator, workers and frontends while supporting multiple backends.
package logging
