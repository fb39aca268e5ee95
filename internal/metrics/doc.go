// Package metrics exports run progress as Prometheus collectors and reads
// runtime memory statistics for run summaries.
package metrics
