package orchestration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/logging"
	"github.com/agbru/tallyrun/internal/progress"
)

const tracerName = "github.com/agbru/tallyrun/internal/orchestration"

// ErrClosed is returned by operations on a closed Coordinator.
var ErrClosed = errors.New("orchestration: coordinator closed")

// Coordinator owns at most one live generation of worker tasks. Start, Reset,
// Stop and Close are serialized; Pause and Resume never wait for them.
type Coordinator struct {
	dispatcher *progress.Dispatcher
	logger     logging.Logger
	tracer     trace.Tracer
	base       context.Context

	mu          sync.Mutex // serializes lifecycle operations
	nextID      uint64
	lastConfigs []WorkerConfig
	closed      bool

	current atomic.Pointer[Generation]
}

// Option configures a Coordinator.
type Option func(*coordinatorOptions)

type coordinatorOptions struct {
	logger     logging.Logger
	tracer     trace.Tracer
	base       context.Context
	bufferSize int
}

// WithLogger sets the logger for lifecycle messages and sink faults.
func WithLogger(l logging.Logger) Option {
	return func(o *coordinatorOptions) { o.logger = l }
}

// WithTracer sets the tracer used for coordinator spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *coordinatorOptions) { o.tracer = t }
}

// WithBaseContext sets the context every generation derives from. Cancelling
// it stops the live generation.
func WithBaseContext(ctx context.Context) Option {
	return func(o *coordinatorOptions) { o.base = ctx }
}

// WithBufferSize sets the capacity of the delivery queue.
func WithBufferSize(n int) Option {
	return func(o *coordinatorOptions) { o.bufferSize = n }
}

// StartOption configures a single Start call.
type StartOption func(*startOptions)

type startOptions struct {
	paused bool
}

// StartPaused builds the generation with every worker paused, so no step is
// taken before the first Resume.
func StartPaused() StartOption {
	return func(o *startOptions) { o.paused = true }
}

// NewCoordinator creates a coordinator delivering events to sink.
func NewCoordinator(sink progress.Sink, opts ...Option) *Coordinator {
	o := coordinatorOptions{
		logger:     logging.Nop(),
		base:       context.Background(),
		bufferSize: len(DefaultIntervals) * progress.DefaultBufferMultiplier,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	return &Coordinator{
		dispatcher: progress.NewDispatcher(sink, o.bufferSize, progress.WithLogger(o.logger)),
		logger:     o.logger,
		tracer:     o.tracer,
		base:       o.base,
	}
}

// Start cancels the current generation, resets the shared total and the
// display, then validates configs and launches one worker per config. Once
// Start returns, no event of an older generation reaches the sink. An invalid
// config yields an apperrors.ConfigError and leaves no live generation.
func (c *Coordinator) Start(ctx context.Context, configs []WorkerConfig, opts ...StartOption) (*Generation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	return c.startLocked(ctx, configs, opts...)
}

func (c *Coordinator) startLocked(ctx context.Context, configs []WorkerConfig, opts ...StartOption) (*Generation, error) {
	var so startOptions
	for _, opt := range opts {
		opt(&so)
	}

	ctx, span := c.tracer.Start(ctx, "coordinator.start",
		trace.WithAttributes(attribute.Int("workers", len(configs))))
	defer span.End()

	c.retireLocked(ctx)

	c.nextID++
	id := c.nextID
	c.dispatcher.Begin(id, len(configs))
	span.SetAttributes(attribute.Int64("generation.id", int64(id)))

	if err := ValidateConfigs(configs); err != nil {
		c.current.Store(nil)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("generation rejected", err, logging.Uint64("generation", id))
		return nil, err
	}

	runCtx, cancel := context.WithCancel(c.base)
	runCtx = trace.ContextWithSpanContext(runCtx, span.SpanContext())
	gen := newGeneration(id, configs, cancel)
	if so.paused {
		gen.pause()
	}
	c.lastConfigs = gen.Configs()
	c.current.Store(gen)

	span.SetAttributes(attribute.String("run.id", gen.RunID().String()))
	c.logger.Info("generation started",
		logging.Uint64("generation", id),
		logging.String("run_id", gen.RunID().String()),
		logging.Int("workers", gen.Len()),
	)

	c.launch(runCtx, gen)
	return gen, nil
}

func (c *Coordinator) launch(ctx context.Context, gen *Generation) {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range gen.tasks {
		task := task
		g.Go(func() error {
			return task.Run(gctx, gen.id, c.dispatcher)
		})
	}

	go func() {
		err := g.Wait()
		gen.cancel()
		gen.finish(err)

		fields := []logging.Field{
			logging.Uint64("generation", gen.id),
			logging.Int("grand_total", gen.GrandTotal()),
			logging.Duration("elapsed", gen.Elapsed()),
		}
		switch {
		case err != nil:
			c.logger.Error("generation faulted", err, fields...)
		case gen.Completed():
			c.logger.Info("generation completed", fields...)
		default:
			c.logger.Info("generation cancelled", fields...)
		}
	}()
}

// retireLocked cancels the live generation, waits for its workers to return
// (or for ctx to end) and fences its events. Callers hold c.mu.
func (c *Coordinator) retireLocked(ctx context.Context) {
	old := c.current.Load()
	if old == nil {
		c.dispatcher.Fence()
		return
	}
	old.cancel()
	select {
	case <-old.done:
	case <-ctx.Done():
		c.logger.Debug("stopped waiting for generation exit", logging.Uint64("generation", old.id))
	}
	c.dispatcher.Fence()
}

// Pause asks every worker of the live generation to stop before its next
// step. It returns without waiting.
func (c *Coordinator) Pause() {
	if gen := c.current.Load(); gen != nil {
		gen.pause()
		c.logger.Debug("generation paused", logging.Uint64("generation", gen.id))
	}
}

// Resume releases every paused worker of the live generation. It returns
// without waiting.
func (c *Coordinator) Resume() {
	if gen := c.current.Load(); gen != nil {
		gen.resume()
		c.logger.Debug("generation resumed", logging.Uint64("generation", gen.id))
	}
}

// Reset restarts with the configs of the most recent successful Start.
func (c *Coordinator) Reset(ctx context.Context, opts ...StartOption) (*Generation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if len(c.lastConfigs) == 0 {
		return nil, apperrors.NewConfigError("nothing to reset: no generation was started")
	}
	return c.startLocked(ctx, c.lastConfigs, opts...)
}

// Stop cancels the live generation and fences its events. It does not wait
// for workers to return; the generation's Done channel reports that.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen := c.current.Load(); gen != nil {
		gen.cancel()
		c.logger.Info("generation stopped", logging.Uint64("generation", gen.id))
	}
	c.dispatcher.Fence()
}

// Current returns the most recent generation, or nil if none was started or
// the last Start was rejected.
func (c *Coordinator) Current() *Generation {
	return c.current.Load()
}

// Flush blocks until every event queued so far has reached the sink.
func (c *Coordinator) Flush(ctx context.Context) error {
	return c.dispatcher.Flush(ctx)
}

// Settle flushes queued events, giving up after timeout even when ctx is
// already done. An abandoned flush is logged at debug.
func (c *Coordinator) Settle(ctx context.Context, timeout time.Duration) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := c.Flush(flushCtx); err != nil {
		c.logger.Debug("display flush abandoned", logging.Duration("timeout", timeout), logging.Err(err))
	}
}

// Stats returns the number of delivered and discarded events.
func (c *Coordinator) Stats() (delivered, stale int64) {
	return c.dispatcher.Stats()
}

// Close stops the live generation, waits for its workers to return and
// shuts the delivery queue down. Events already queued for the live
// generation are discarded. It is safe to call multiple times.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	gen := c.current.Load()
	if gen != nil {
		gen.cancel()
	}
	c.dispatcher.Fence()
	c.mu.Unlock()

	if gen != nil {
		<-gen.done
	}
	c.dispatcher.Close()
}
