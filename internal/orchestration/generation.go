package orchestration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/tallyrun/internal/progress"
	"github.com/agbru/tallyrun/internal/tally"
	"github.com/agbru/tallyrun/internal/worker"
)

// Generation is the set of worker tasks created by one Coordinator.Start.
// The handle stays readable after the generation ended.
type Generation struct {
	id      uint64
	runID   uuid.UUID
	configs []WorkerConfig
	tasks   []*worker.Task
	total   *tally.Total

	cancel    context.CancelFunc
	startedAt time.Time
	done      chan struct{}

	mu         sync.Mutex
	err        error
	finishedAt time.Time
}

func newGeneration(id uint64, configs []WorkerConfig, cancel context.CancelFunc) *Generation {
	g := &Generation{
		id:        id,
		runID:     uuid.New(),
		configs:   append([]WorkerConfig(nil), configs...),
		total:     tally.New(),
		cancel:    cancel,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
	g.tasks = make([]*worker.Task, len(configs))
	for i, c := range configs {
		g.tasks[i] = worker.New(i, c.Interval(), g.total)
	}
	return g
}

// ID returns the generation number. IDs increase with every Start.
func (g *Generation) ID() uint64 { return g.id }

// RunID returns a unique identifier used to correlate logs and traces.
func (g *Generation) RunID() uuid.UUID { return g.runID }

// Len returns the number of workers.
func (g *Generation) Len() int { return len(g.tasks) }

// Task returns worker i.
func (g *Generation) Task(i int) *worker.Task { return g.tasks[i] }

// Configs returns a copy of the configs the generation was started with.
func (g *Generation) Configs() []WorkerConfig {
	return append([]WorkerConfig(nil), g.configs...)
}

// Done is closed once every worker of the generation has returned.
func (g *Generation) Done() <-chan struct{} { return g.done }

// Wait blocks until the generation ended or ctx is done. It returns the first
// worker fault, nil when the generation completed or was cancelled, and
// ctx.Err() when the caller stopped waiting.
func (g *Generation) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return g.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the first worker fault once the generation ended.
func (g *Generation) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// GrandTotal returns the current shared total.
func (g *Generation) GrandTotal() int { return g.total.Value() }

// MaxGrandTotal returns the shared total reached when every worker completes.
func (g *Generation) MaxGrandTotal() int { return len(g.tasks) * progress.TargetSteps }

// Completed reports whether every worker reached its target.
func (g *Generation) Completed() bool {
	for _, t := range g.tasks {
		if t.State() != worker.StateCompleted {
			return false
		}
	}
	return true
}

// Elapsed returns the wall time of the generation, up to now if it is still
// running.
func (g *Generation) Elapsed() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finishedAt.IsZero() {
		return time.Since(g.startedAt)
	}
	return g.finishedAt.Sub(g.startedAt)
}

func (g *Generation) pause() {
	for _, t := range g.tasks {
		t.Pause()
	}
}

func (g *Generation) resume() {
	for _, t := range g.tasks {
		t.Resume()
	}
}

func (g *Generation) finish(err error) {
	g.mu.Lock()
	g.err = err
	g.finishedAt = time.Now()
	g.mu.Unlock()
	close(g.done)
}

func (g *Generation) ended() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// GenerationSnapshot is a point-in-time view of a generation.
type GenerationSnapshot struct {
	ID         uint64           `json:"id"`
	RunID      string           `json:"run_id"`
	Workers    []WorkerSnapshot `json:"workers"`
	GrandTotal int              `json:"grand_total"`
	MaxTotal   int              `json:"max_total"`
	Done       bool             `json:"done"`
	Elapsed    time.Duration    `json:"elapsed_ns"`
}

// WorkerSnapshot is the serializable view of one worker.
type WorkerSnapshot struct {
	ID             int     `json:"id"`
	Progress       int     `json:"progress"`
	State          string  `json:"state"`
	IntervalMillis float64 `json:"interval_ms"`
}

// Snapshot returns the current view of the generation.
func (g *Generation) Snapshot() GenerationSnapshot {
	s := GenerationSnapshot{
		ID:         g.id,
		RunID:      g.runID.String(),
		Workers:    make([]WorkerSnapshot, len(g.tasks)),
		GrandTotal: g.total.Value(),
		MaxTotal:   g.MaxGrandTotal(),
		Done:       g.ended(),
		Elapsed:    g.Elapsed(),
	}
	for i, t := range g.tasks {
		ts := t.Snapshot()
		s.Workers[i] = WorkerSnapshot{
			ID:             ts.ID,
			Progress:       ts.Progress,
			State:          ts.State.String(),
			IntervalMillis: g.configs[i].IntervalMillis,
		}
	}
	return s
}
