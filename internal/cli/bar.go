package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/agbru/tallyrun/internal/progress"
)

// BarSink draws the shared total as a single progress bar.
type BarSink struct {
	mu       sync.Mutex
	out      io.Writer
	bar      *progressbar.ProgressBar
	workers  int
	grand    int
	finished int
}

var (
	_ progress.Sink               = (*BarSink)(nil)
	_ progress.Resetter           = (*BarSink)(nil)
	_ progress.CompletionObserver = (*BarSink)(nil)
)

// NewBarSink creates a sink drawing to out.
func NewBarSink(out io.Writer) *BarSink {
	return &BarSink{out: out}
}

// OnReset replaces the bar with one sized for workers.
func (s *BarSink) OnReset(workers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		_ = s.bar.Clear()
	}
	s.workers = workers
	s.grand = 0
	s.finished = 0
	s.bar = progressbar.NewOptions(workers*progress.TargetSteps,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetWidth(ProgressBarWidth),
		progressbar.OptionSetDescription(s.describeLocked()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// OnProgress is a no-op; the bar follows the shared total.
func (s *BarSink) OnProgress(int, int) {}

// OnWorkerTotalChanged is a no-op; the bar follows the shared total.
func (s *BarSink) OnWorkerTotalChanged(int, int) {}

// OnGrandTotalChanged advances the bar. Lower totals arriving late are
// ignored.
func (s *BarSink) OnGrandTotalChanged(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar == nil || total <= s.grand {
		return
	}
	s.grand = total
	_ = s.bar.Set(total)
}

// OnWorkerCompleted updates the bar description.
func (s *BarSink) OnWorkerCompleted(int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished++
	if s.bar != nil {
		s.bar.Describe(s.describeLocked())
	}
}

// Finish ends the bar line.
func (s *BarSink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		fmt.Fprintln(s.out)
	}
}

// GrandTotal returns the total shown by the bar.
func (s *BarSink) GrandTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grand
}

func (s *BarSink) describeLocked() string {
	return fmt.Sprintf("workers %d/%d", s.finished, s.workers)
}
