package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGateOpenByDefault(t *testing.T) {
	t.Parallel()
	g := NewGate()
	if g.Paused() {
		t.Fatal("new gate is paused")
	}
	if err := g.Wait(context.Background()); err != nil {
		t.Fatalf("Wait on open gate: %v", err)
	}
}

func TestGateResumeWakesAllWaiters(t *testing.T) {
	t.Parallel()
	g := NewGate()
	g.Pause()
	g.Pause()

	const waiters = 8
	var wg sync.WaitGroup
	errs := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- g.Wait(context.Background())
		}()
	}

	time.Sleep(20 * time.Millisecond)
	select {
	case err := <-errs:
		t.Fatalf("waiter released while paused: %v", err)
	default:
	}

	g.Resume()
	g.Resume()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Wait returned %v after Resume", err)
		}
	}
}

func TestGateWaitObservesCancellation(t *testing.T) {
	t.Parallel()
	g := NewGate()
	g.Pause()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline exceeded", err)
	}
}

func TestGateRepausedWaiterBlocksAgain(t *testing.T) {
	t.Parallel()
	g := NewGate()
	g.Pause()

	// Resume and Pause back to back: whichever the waiter observes, it must
	// end up blocked on the second pause rather than running through.
	g.Resume()
	g.Pause()

	done := make(chan error, 1)
	go func() { done <- g.Wait(context.Background()) }()

	select {
	case err := <-done:
		t.Fatalf("waiter passed a paused gate: %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	g.Resume()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not released by Resume")
	}
}

func TestGateConcurrentToggleConverges(t *testing.T) {
	t.Parallel()
	g := NewGate()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.Pause()
				g.Resume()
			}
		}()
	}
	wg.Wait()
	g.Resume()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("gate stuck after final Resume: %v", err)
	}
}
