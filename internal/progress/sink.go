//go:generate mockgen -source=sink.go -destination=mocks/mock_sink.go -package=mocks

package progress

import (
	"fmt"
	"sync"

	"github.com/agbru/tallyrun/internal/logging"
)

// Sink is the display-side consumer of worker notifications. The Dispatcher
// calls a Sink from a single goroutine, so implementations only need to be
// safe against their own readers.
type Sink interface {
	// OnProgress reports the new progress value of one worker.
	OnProgress(worker, value int)
	// OnWorkerTotalChanged reports the cumulative count of one worker.
	OnWorkerTotalChanged(worker, total int)
	// OnGrandTotalChanged reports the shared total after a step.
	OnGrandTotalChanged(total int)
}

// Resetter is implemented by sinks that hold display state which must be
// cleared when a new generation begins.
type Resetter interface {
	OnReset(workers int)
}

// CompletionObserver is implemented by sinks that want to know when a worker
// finished all of its steps.
type CompletionObserver interface {
	OnWorkerCompleted(worker int)
}

// SinkFuncs adapts plain functions to the Sink, Resetter and
// CompletionObserver interfaces. Nil fields are ignored.
type SinkFuncs struct {
	Progress    func(worker, value int)
	WorkerTotal func(worker, total int)
	GrandTotal  func(total int)
	Reset       func(workers int)
	Completed   func(worker int)
}

// OnProgress calls Progress if set.
func (f SinkFuncs) OnProgress(worker, value int) {
	if f.Progress != nil {
		f.Progress(worker, value)
	}
}

// OnWorkerTotalChanged calls WorkerTotal if set.
func (f SinkFuncs) OnWorkerTotalChanged(worker, total int) {
	if f.WorkerTotal != nil {
		f.WorkerTotal(worker, total)
	}
}

// OnGrandTotalChanged calls GrandTotal if set.
func (f SinkFuncs) OnGrandTotalChanged(total int) {
	if f.GrandTotal != nil {
		f.GrandTotal(total)
	}
}

// OnReset calls Reset if set.
func (f SinkFuncs) OnReset(workers int) {
	if f.Reset != nil {
		f.Reset(workers)
	}
}

// OnWorkerCompleted calls Completed if set.
func (f SinkFuncs) OnWorkerCompleted(worker int) {
	if f.Completed != nil {
		f.Completed(worker)
	}
}

// NullSink discards every notification. Useful for quiet mode or testing.
type NullSink struct{}

func (NullSink) OnProgress(int, int)           {}
func (NullSink) OnWorkerTotalChanged(int, int) {}
func (NullSink) OnGrandTotalChanged(int)       {}

// MultiSink fans notifications out to several sinks, in registration order.
// Register may be called while the dispatcher is delivering.
//
// A panicking sink is recovered and logged on its own, so the sinks after it
// still see the notification.
type MultiSink struct {
	mu     sync.RWMutex
	sinks  []Sink
	logger logging.Logger
}

// NewMultiSink creates a fan-out over sinks; nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{logger: logging.Nop()}
	for _, s := range sinks {
		m.Register(s)
	}
	return m
}

// Register appends a sink to the fan-out.
func (m *MultiSink) Register(s Sink) {
	if s == nil {
		return
	}
	m.mu.Lock()
	m.sinks = append(m.sinks, s)
	m.mu.Unlock()
}

// Len returns the number of registered sinks.
func (m *MultiSink) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sinks)
}

// SetLogger sets where recovered sink panics are reported.
func (m *MultiSink) SetLogger(l logging.Logger) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

// each calls fn for every registered sink, recovering per sink.
func (m *MultiSink) each(fn func(Sink)) {
	m.mu.RLock()
	sinks := append([]Sink(nil), m.sinks...)
	logger := m.logger
	m.mu.RUnlock()

	for i, s := range sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("display sink panicked", fmt.Errorf("%v", r), logging.Int("sink", i))
				}
			}()
			fn(s)
		}()
	}
}

// OnProgress forwards to every sink.
func (m *MultiSink) OnProgress(worker, value int) {
	m.each(func(s Sink) { s.OnProgress(worker, value) })
}

// OnWorkerTotalChanged forwards to every sink.
func (m *MultiSink) OnWorkerTotalChanged(worker, total int) {
	m.each(func(s Sink) { s.OnWorkerTotalChanged(worker, total) })
}

// OnGrandTotalChanged forwards to every sink.
func (m *MultiSink) OnGrandTotalChanged(total int) {
	m.each(func(s Sink) { s.OnGrandTotalChanged(total) })
}

// OnReset forwards to every sink implementing Resetter.
func (m *MultiSink) OnReset(workers int) {
	m.each(func(s Sink) {
		if r, ok := s.(Resetter); ok {
			r.OnReset(workers)
		}
	})
}

// OnWorkerCompleted forwards to every sink implementing CompletionObserver.
func (m *MultiSink) OnWorkerCompleted(worker int) {
	m.each(func(s Sink) {
		if c, ok := s.(CompletionObserver); ok {
			c.OnWorkerCompleted(worker)
		}
	})
}
