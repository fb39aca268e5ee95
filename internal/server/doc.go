// Package server exposes a read-only HTTP view of a run: Prometheus metrics,
// a JSON status document and a liveness probe. It never drives the
// coordinator; it only reads snapshots.
package server
