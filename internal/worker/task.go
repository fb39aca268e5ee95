package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/progress"
	"github.com/agbru/tallyrun/internal/tally"
)

const tracerName = "github.com/agbru/tallyrun/internal/worker"

// ErrTaskReused is returned by Run when the task already ran once.
var ErrTaskReused = errors.New("worker: task already started")

// State is the lifecycle state of a Task.
type State int32

// Task states.
const (
	StatePending State = iota
	StateRunning
	StatePaused
	StateCancelled
	StateCompleted
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCancelled:
		return "cancelled"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether no further progress can happen in state s.
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateCompleted
}

// Emitter accepts events produced by a task. Emit returns false when the
// event could not be queued because ctx is done or the receiver is closed.
// progress.Dispatcher implements Emitter.
type Emitter interface {
	Emit(ctx context.Context, ev progress.Event) bool
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, ev progress.Event) bool

// Emit calls f.
func (f EmitterFunc) Emit(ctx context.Context, ev progress.Event) bool { return f(ctx, ev) }

// Snapshot is a point-in-time view of a Task.
type Snapshot struct {
	ID       int           `json:"id"`
	Progress int           `json:"progress"`
	State    State         `json:"-"`
	Interval time.Duration `json:"interval"`
}

// Task is one worker of a generation. It is not reusable: once Run returned,
// a new Task must be built to run again.
type Task struct {
	id       int
	interval time.Duration
	total    *tally.Total

	counter tally.Counter
	gate    *Gate
	state   atomic.Int32
	started atomic.Bool
}

// New builds a task with the given index, inter-step interval and shared
// total.
func New(id int, interval time.Duration, total *tally.Total) *Task {
	return &Task{
		id:       id,
		interval: interval,
		total:    total,
		gate:     NewGate(),
	}
}

// IntervalFromMillis converts a millisecond count with sub-millisecond
// precision to a duration. Values outside the duration range saturate.
func IntervalFromMillis(ms float64) time.Duration {
	d := ms * float64(time.Millisecond)
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case d <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(d)
}

// ID returns the task's index within its generation.
func (t *Task) ID() int { return t.id }

// Interval returns the configured delay between steps.
func (t *Task) Interval() time.Duration { return t.interval }

// Progress returns the number of steps taken so far.
func (t *Task) Progress() int { return t.counter.Value() }

// State returns the current lifecycle state. A running task whose gate is
// closed reports StatePaused, as does a pending task paused before it started.
func (t *Task) State() State {
	s := State(t.state.Load())
	if (s == StateRunning || s == StatePending) && t.gate.Paused() {
		return StatePaused
	}
	return s
}

// Pause asks the task to stop before its next step. It does not wait.
func (t *Task) Pause() {
	if State(t.state.Load()).Terminal() {
		return
	}
	t.gate.Pause()
}

// Resume reopens the task's gate. It does not wait.
func (t *Task) Resume() {
	t.gate.Resume()
}

// Snapshot returns the task's current view.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		ID:       t.id,
		Progress: t.Progress(),
		State:    t.State(),
		Interval: t.interval,
	}
}

// Run executes the step loop for the given generation, emitting events to
// emit. Cancellation of ctx is a normal exit and returns nil. A panic inside
// the loop is returned as an apperrors.WorkerError.
func (t *Task) Run(ctx context.Context, generation uint64, emit Emitter) (err error) {
	if !t.started.CompareAndSwap(false, true) {
		return ErrTaskReused
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "worker.run",
		trace.WithAttributes(
			attribute.Int("worker.id", t.id),
			attribute.Int64("generation.id", int64(generation)),
			attribute.Int64("worker.interval_us", t.interval.Microseconds()),
		),
	)
	defer func() {
		if r := recover(); r != nil {
			t.state.Store(int32(StateCancelled))
			err = apperrors.WorkerError{Worker: t.id, Cause: fmt.Errorf("panic: %v", r)}
		}
		span.SetAttributes(
			attribute.String("worker.state", State(t.state.Load()).String()),
			attribute.Int("worker.progress", t.Progress()),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	t.state.Store(int32(StateRunning))

	for step := 1; step <= progress.TargetSteps; step++ {
		if ctx.Err() != nil {
			return t.cancelled()
		}
		if t.gate.Wait(ctx) != nil {
			return t.cancelled()
		}

		own, grand := t.total.Advance(&t.counter)
		if !emit.Emit(ctx, progress.StepEvent(generation, t.id, step, own, grand)) {
			return t.cancelled()
		}

		if step < progress.TargetSteps && !sleep(ctx, t.interval) {
			return t.cancelled()
		}
	}

	t.state.Store(int32(StateCompleted))
	emit.Emit(ctx, progress.CompletedEvent(generation, t.id))
	return nil
}

func (t *Task) cancelled() error {
	t.state.Store(int32(StateCancelled))
	return nil
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
