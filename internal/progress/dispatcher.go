package progress

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/agbru/tallyrun/internal/logging"
)

// DefaultBufferMultiplier sizes the delivery queue relative to the number of
// workers expected per generation. A larger buffer reduces the likelihood of
// blocking worker goroutines when the sink is slow to consume updates.
const DefaultBufferMultiplier = 16

// Dispatcher is the single ordered delivery channel between workers and a
// Sink. It owns one consumer goroutine, started by NewDispatcher and stopped
// by Close.
type Dispatcher struct {
	sink   Sink
	logger logging.Logger

	events    chan Event
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once

	// mu is held while a notification is being delivered and while the
	// current generation is switched.
	mu      sync.Mutex
	current uint64

	delivered atomic.Int64
	stale     atomic.Int64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used for sink faults.
func WithLogger(l logging.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher delivering to sink through a queue of
// bufferSize events and starts its consumer goroutine.
func NewDispatcher(sink Sink, bufferSize int, opts ...DispatcherOption) *Dispatcher {
	if sink == nil {
		sink = NullSink{}
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	d := &Dispatcher{
		sink:   sink,
		logger: logging.Nop(),
		events: make(chan Event, bufferSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// Begin switches delivery to generation gen and resets the sink's display
// state for the given number of workers. When Begin returns, no event of an
// older generation will be delivered anymore, and any delivery that was in
// flight has finished.
func (d *Dispatcher) Begin(gen uint64, workers int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.current = gen
	if r, ok := d.sink.(Resetter); ok {
		d.safeCall(func() { r.OnReset(workers) })
	}
}

// Fence stops delivery of every generation without starting a new one.
func (d *Dispatcher) Fence() {
	d.mu.Lock()
	d.current = 0
	d.mu.Unlock()
}

// Current returns the generation whose events are currently delivered.
func (d *Dispatcher) Current() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Emit enqueues ev. It blocks while the queue is full and gives up, returning
// false, when ctx is done or the dispatcher is closed.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case d.events <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-d.stopCh:
		return false
	}
}

// Flush blocks until every event enqueued before the call has been
// delivered or discarded.
func (d *Dispatcher) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case d.events <- Event{Kind: kindBarrier, ack: ack}:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopCh:
		return nil
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.doneCh:
		return nil
	}
}

// Close stops accepting events, delivers what is already queued, and waits
// for the consumer goroutine to exit. It is safe to call multiple times.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.stopCh) })
	<-d.doneCh
}

// Stats returns the number of delivered and discarded (stale) events.
func (d *Dispatcher) Stats() (delivered, stale int64) {
	return d.delivered.Load(), d.stale.Load()
}

func (d *Dispatcher) run() {
	defer close(d.doneCh)
	for {
		select {
		case ev := <-d.events:
			d.deliver(ev)
		case <-d.stopCh:
			for {
				select {
				case ev := <-d.events:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(ev Event) {
	if ev.Kind == kindBarrier {
		close(ev.ack)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if ev.Generation != d.current {
		d.stale.Add(1)
		return
	}
	d.delivered.Add(1)

	switch ev.Kind {
	case KindStep:
		d.safeCall(func() { d.sink.OnProgress(ev.Worker, ev.Value) })
		d.safeCall(func() { d.sink.OnWorkerTotalChanged(ev.Worker, ev.WorkerTotal) })
		d.safeCall(func() { d.sink.OnGrandTotalChanged(ev.GrandTotal) })
	case KindCompleted:
		if c, ok := d.sink.(CompletionObserver); ok {
			d.safeCall(func() { c.OnWorkerCompleted(ev.Worker) })
		}
	}
}

// safeCall shields the consumer goroutine from a panicking sink.
func (d *Dispatcher) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("display sink panicked", fmt.Errorf("%v", r))
		}
	}()
	fn()
}
