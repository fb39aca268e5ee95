package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/tallyrun/internal/format"
	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/progress"
)

const (
	// ProgressRefreshRate is the spinner's redraw period.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts a terminal spinner so sinks can be tested without a
// terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

// UpdateSuffix swaps the suffix under the spinner's lock; the animation
// goroutine reads it concurrently.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// SpinnerSink renders the run as one spinner line: the average progress
// bar with an ETA, followed by the shared total.
type SpinnerSink struct {
	mu       sync.Mutex
	spinner  Spinner
	agg      *orchestration.ProgressAggregator
	grand    int
	finished int
}

var (
	_ progress.Sink               = (*SpinnerSink)(nil)
	_ progress.Resetter           = (*SpinnerSink)(nil)
	_ progress.CompletionObserver = (*SpinnerSink)(nil)
)

// NewSpinnerSink creates a sink drawing to out. Call Start before the run
// and Stop after the final flush.
func NewSpinnerSink(out io.Writer) *SpinnerSink {
	return &SpinnerSink{spinner: newSpinner(spinner.WithWriter(out))}
}

// Start begins the animation.
func (s *SpinnerSink) Start() { s.spinner.Start() }

// Stop halts the animation.
func (s *SpinnerSink) Stop() { s.spinner.Stop() }

// OnReset resizes the aggregate for a new generation.
func (s *SpinnerSink) OnReset(workers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agg = orchestration.NewProgressAggregator(workers)
	s.grand = 0
	s.finished = 0
	s.refreshLocked()
}

// OnProgress records a worker step.
func (s *SpinnerSink) OnProgress(worker, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.agg == nil {
		return
	}
	s.agg.Update(worker, value)
	s.refreshLocked()
}

// OnWorkerTotalChanged is a no-op; the line shows averages only.
func (s *SpinnerSink) OnWorkerTotalChanged(int, int) {}

// OnGrandTotalChanged keeps the highest total of the generation.
func (s *SpinnerSink) OnGrandTotalChanged(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if total > s.grand {
		s.grand = total
	}
}

// OnWorkerCompleted counts finished workers.
func (s *SpinnerSink) OnWorkerCompleted(int) {
	s.mu.Lock()
	s.finished++
	s.refreshLocked()
	s.mu.Unlock()
}

// Suffix returns the text currently shown after the spinner.
func (s *SpinnerSink) Suffix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suffixLocked()
}

func (s *SpinnerSink) refreshLocked() {
	s.spinner.UpdateSuffix(s.suffixLocked())
}

func (s *SpinnerSink) suffixLocked() string {
	if s.agg == nil {
		return " waiting for workers"
	}
	line := fmt.Sprintf(" %s  total %s",
		format.FormatProgressBarWithETA(s.agg.CalculateAverage(), s.agg.GetETA(), ProgressBarWidth),
		format.GrandTotalText(s.grand, s.agg.NumWorkers()*progress.TargetSteps))
	if s.agg.IsMultiWorker() {
		line += fmt.Sprintf("  done %d/%d", s.finished, s.agg.NumWorkers())
	}
	return line
}
