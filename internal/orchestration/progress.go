package orchestration

import (
	"time"

	"github.com/agbru/tallyrun/internal/format"
	"github.com/agbru/tallyrun/internal/progress"
)

// ProgressAggregator turns per-worker step values into an overall fraction
// and an ETA. It wraps format.ProgressWithETA so that CLI and TUI frontends
// share the same aggregation. It is fed from the single delivery goroutine
// and is not safe for concurrent use.
type ProgressAggregator struct {
	state      *format.ProgressWithETA
	numWorkers int
}

// NewProgressAggregator creates an aggregator for numWorkers workers.
// Returns nil if numWorkers <= 0.
func NewProgressAggregator(numWorkers int) *ProgressAggregator {
	if numWorkers <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:      format.NewProgressWithETA(numWorkers),
		numWorkers: numWorkers,
	}
}

// AggregatedProgress holds the result of processing a single step.
type AggregatedProgress struct {
	// Worker is the index of the worker that stepped.
	Worker int
	// Value is the worker's progress as a fraction (0.0 to 1.0).
	Value float64
	// AverageProgress is the aggregated fraction across all workers.
	AverageProgress float64
	// ETA is the estimated time remaining based on the smoothed rate.
	ETA time.Duration
}

// Update records that worker reached value steps and returns the aggregate.
func (a *ProgressAggregator) Update(worker, value int) AggregatedProgress {
	frac := float64(value) / float64(progress.TargetSteps)
	avg, eta := a.state.UpdateWithETA(worker, frac)
	return AggregatedProgress{
		Worker:          worker,
		Value:           frac,
		AverageProgress: avg,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// NumWorkers returns the number of workers being tracked.
func (a *ProgressAggregator) NumWorkers() int {
	return a.numWorkers
}

// IsMultiWorker returns true if tracking more than one worker.
func (a *ProgressAggregator) IsMultiWorker() bool {
	return a.numWorkers > 1
}
