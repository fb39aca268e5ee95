package orchestration

import (
	"io"
	"time"

	"github.com/agbru/tallyrun/internal/worker"
)

// WorkerResult is the final state of one worker of a run.
type WorkerResult struct {
	// ID is the worker's index within its generation.
	ID int
	// Progress is the number of steps the worker took.
	Progress int
	// State is the worker's terminal state.
	State worker.State
	// Interval is the configured delay between steps.
	Interval time.Duration
}

// RunResult summarizes a generation once it ended. It serves as the shared
// type between orchestration and presentation layers.
type RunResult struct {
	// GenerationID is the generation number of the run.
	GenerationID uint64
	// RunID correlates the run with its log lines and trace spans.
	RunID string
	// Workers holds one entry per worker, in index order.
	Workers []WorkerResult
	// GrandTotal is the shared total when the run ended.
	GrandTotal int
	// MaxTotal is the shared total of a fully completed run.
	MaxTotal int
	// Duration is the wall time of the run.
	Duration time.Duration
	// Err is the reason the run ended early, if any.
	Err error
}

// Completed reports whether every worker reached its target.
func (r RunResult) Completed() bool {
	if len(r.Workers) == 0 {
		return false
	}
	for _, w := range r.Workers {
		if w.State != worker.StateCompleted {
			return false
		}
	}
	return true
}

// WorkerSum returns the sum of every worker's progress.
func (r RunResult) WorkerSum() int {
	sum := 0
	for _, w := range r.Workers {
		sum += w.Progress
	}
	return sum
}

// ResultPresenter defines how a finished run is reported. It decouples the
// orchestration layer from output formats.
type ResultPresenter interface {
	// PresentSummary displays per-worker totals, the grand total and the
	// wall time of a run.
	PresentSummary(result RunResult, out io.Writer)

	// HandleError reports err and returns the matching exit code.
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}
