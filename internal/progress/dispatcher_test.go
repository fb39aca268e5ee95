package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/agbru/tallyrun/internal/progress/mocks"
)

// recordingSink captures every notification in delivery order.
type recordingSink struct {
	mu     sync.Mutex
	values map[int][]int
	grand  []int
	resets []int
	done   []int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{values: make(map[int][]int)}
}

func (r *recordingSink) OnProgress(worker, value int) {
	r.mu.Lock()
	r.values[worker] = append(r.values[worker], value)
	r.mu.Unlock()
}

func (r *recordingSink) OnWorkerTotalChanged(int, int) {}

func (r *recordingSink) OnGrandTotalChanged(total int) {
	r.mu.Lock()
	r.grand = append(r.grand, total)
	r.mu.Unlock()
}

func (r *recordingSink) OnReset(workers int) {
	r.mu.Lock()
	r.resets = append(r.resets, workers)
	r.mu.Unlock()
}

func (r *recordingSink) OnWorkerCompleted(worker int) {
	r.mu.Lock()
	r.done = append(r.done, worker)
	r.mu.Unlock()
}

func (r *recordingSink) valuesOf(worker int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values[worker]...)
}

func (r *recordingSink) stepCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.values {
		n += len(v)
	}
	return n
}

func TestDispatcherPreservesPerWorkerOrder(t *testing.T) {
	t.Parallel()
	sink := newRecordingSink()
	d := NewDispatcher(sink, 8)
	defer d.Close()
	d.Begin(1, 3)

	ctx := context.Background()
	var wg sync.WaitGroup
	for w := 0; w < 3; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for v := 1; v <= TargetSteps; v++ {
				if !d.Emit(ctx, StepEvent(1, worker, v, v, 0)) {
					t.Errorf("worker %d: emit rejected at %d", worker, v)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	if err := d.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	for w := 0; w < 3; w++ {
		got := sink.valuesOf(w)
		if len(got) != TargetSteps {
			t.Fatalf("worker %d: got %d notifications, want %d", w, len(got), TargetSteps)
		}
		for i, v := range got {
			if v != i+1 {
				t.Fatalf("worker %d: notification %d carries %d, want %d", w, i, v, i+1)
			}
		}
	}
}

func TestDispatcherDropsStaleGenerations(t *testing.T) {
	t.Parallel()
	sink := newRecordingSink()
	d := NewDispatcher(sink, 64)
	defer d.Close()
	ctx := context.Background()

	d.Begin(1, 1)
	d.Emit(ctx, StepEvent(1, 0, 1, 1, 1))
	if err := d.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	d.Begin(2, 1)
	d.Emit(ctx, StepEvent(1, 0, 2, 2, 2))
	d.Emit(ctx, StepEvent(2, 0, 1, 1, 1))
	if err := d.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	delivered, stale := d.Stats()
	if stale != 1 {
		t.Errorf("stale = %d, want 1", stale)
	}
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.resets) != 2 {
		t.Errorf("resets = %v, want two", sink.resets)
	}
	for _, g := range sink.grand {
		if g == 2 {
			t.Errorf("event of generation 1 delivered after generation 2 began")
		}
	}
}

func TestDispatcherFenceStopsDelivery(t *testing.T) {
	t.Parallel()
	sink := newRecordingSink()
	d := NewDispatcher(sink, 16)
	defer d.Close()
	ctx := context.Background()

	d.Begin(5, 1)
	d.Fence()
	if got := d.Current(); got != 0 {
		t.Fatalf("Current() = %d after Fence, want 0", got)
	}
	d.Emit(ctx, StepEvent(5, 0, 1, 1, 1))
	if err := d.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := sink.stepCount(); n != 0 {
		t.Errorf("%d notifications delivered after Fence, want 0", n)
	}
}

func TestDispatcherCompletedEvent(t *testing.T) {
	t.Parallel()
	sink := newRecordingSink()
	d := NewDispatcher(sink, 4)
	defer d.Close()
	ctx := context.Background()

	d.Begin(1, 2)
	d.Emit(ctx, CompletedEvent(1, 1))
	if err := d.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.done) != 1 || sink.done[0] != 1 {
		t.Errorf("completed = %v, want [1]", sink.done)
	}
}

func TestDispatcherEmitRespectsContext(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	sink := SinkFuncs{Progress: func(int, int) { <-block }}
	d := NewDispatcher(sink, 1)
	d.Begin(1, 1)
	defer func() {
		close(block)
		d.Close()
	}()

	cctx, cancel := context.WithCancel(context.Background())
	cancel()
	if d.Emit(cctx, StepEvent(1, 0, 1, 1, 1)) {
		t.Fatal("Emit accepted an event with a canceled context")
	}

	// The consumer blocks in the sink holding one event and the queue holds
	// one more, so a third emit must give up when its context expires.
	rejected := false
	for v := 1; v <= 3 && !rejected; v++ {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		rejected = !d.Emit(ctx, StepEvent(1, 0, v, v, v))
		cancel()
	}
	if !rejected {
		t.Error("Emit never gave up on a full queue")
	}
}

func TestDispatcherCloseDrainsQueue(t *testing.T) {
	t.Parallel()
	sink := newRecordingSink()
	d := NewDispatcher(sink, 32)
	d.Begin(1, 1)
	ctx := context.Background()
	for v := 1; v <= 10; v++ {
		d.Emit(ctx, StepEvent(1, 0, v, v, v))
	}
	d.Close()
	d.Close()

	if got := len(sink.valuesOf(0)); got != 10 {
		t.Errorf("delivered %d events before close, want 10", got)
	}
	if d.Emit(ctx, StepEvent(1, 0, 11, 11, 11)) {
		t.Error("Emit accepted an event after Close")
	}
	if err := d.Flush(ctx); err != nil {
		t.Errorf("Flush after Close: %v", err)
	}
}

func TestDispatcherSurvivesPanickingSink(t *testing.T) {
	t.Parallel()
	calls := 0
	sink := SinkFuncs{Progress: func(worker, value int) {
		calls++
		if value == 1 {
			panic("boom")
		}
	}}
	d := NewDispatcher(sink, 4)
	defer d.Close()
	d.Begin(1, 1)
	ctx := context.Background()
	d.Emit(ctx, StepEvent(1, 0, 1, 1, 1))
	d.Emit(ctx, StepEvent(1, 0, 2, 2, 2))
	if err := d.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if calls != 2 {
		t.Errorf("sink called %d times, want 2", calls)
	}
}

func TestDispatcherPanicInOneNotificationKeepsTheOthers(t *testing.T) {
	t.Parallel()
	var grand []int
	sink := SinkFuncs{
		Progress:   func(int, int) { panic("boom") },
		GrandTotal:  func(total int) { grand = append(grand, total) },
	}
	d := NewDispatcher(sink, 4)
	defer d.Close()
	d.Begin(1, 1)
	ctx := context.Background()
	d.Emit(ctx, StepEvent(1, 0, 1, 1, 5))
	if err := d.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(grand) != 1 || grand[0] != 5 {
		t.Errorf("grand totals = %v, want [5]", grand)
	}
}

func TestMultiSinkIsolatesPanickingSink(t *testing.T) {
	t.Parallel()
	board := NewBoard()
	panicking := SinkFuncs{GrandTotal: func(int) { panic("bar exploded") }}
	m := NewMultiSink(panicking, board)

	m.OnReset(2)
	m.OnProgress(1, 3)
	m.OnWorkerTotalChanged(1, 3)
	m.OnGrandTotalChanged(3)

	snap := board.Snapshot()
	if snap.GrandTotal != 3 {
		t.Errorf("board grand total = %d, want 3", snap.GrandTotal)
	}
	if len(snap.Values) != 2 || snap.Values[1] != 3 {
		t.Errorf("board values = %v, want [0 3]", snap.Values)
	}
}

func TestDispatcherStepMapsToSinkCalls(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)

	gomock.InOrder(
		sink.EXPECT().OnProgress(2, 7),
		sink.EXPECT().OnWorkerTotalChanged(2, 7),
		sink.EXPECT().OnGrandTotalChanged(19),
	)

	d := NewDispatcher(sink, 2)
	defer d.Close()
	d.Begin(3, 3)
	ctx := context.Background()
	d.Emit(ctx, StepEvent(3, 2, 7, 7, 19))
	if err := d.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestMultiSinkForwardsOptionalInterfaces(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	resetter := mocks.NewMockResetter(ctrl)
	observer := mocks.NewMockCompletionObserver(ctrl)
	resetter.EXPECT().OnReset(4)
	observer.EXPECT().OnWorkerCompleted(1)

	m := NewMultiSink(
		nil,
		resettingSink{NullSink{}, resetter},
		completingSink{NullSink{}, observer},
	)
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	m.OnReset(4)
	m.OnWorkerCompleted(1)
	m.OnProgress(0, 1)
}

type resettingSink struct {
	NullSink
	r *mocks.MockResetter
}

func (s resettingSink) OnReset(workers int) { s.r.OnReset(workers) }

type completingSink struct {
	NullSink
	c *mocks.MockCompletionObserver
}

func (s completingSink) OnWorkerCompleted(worker int) { s.c.OnWorkerCompleted(worker) }
