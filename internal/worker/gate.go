package worker

import (
	"context"
	"sync"
)

// Gate is a pause gate. A closed channel means the gate is open; while
// paused, waiters block on a fresh open channel that Resume closes, which
// releases every waiter at once.
type Gate struct {
	mu     sync.Mutex
	paused bool
	ch     chan struct{}
}

// NewGate returns an open gate.
func NewGate() *Gate {
	ch := make(chan struct{})
	close(ch)
	return &Gate{ch: ch}
}

// Pause closes the gate. It is a no-op when already paused.
func (g *Gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused {
		return
	}
	g.paused = true
	g.ch = make(chan struct{})
}

// Resume opens the gate and wakes all waiters. It is a no-op when not paused.
func (g *Gate) Resume() {
	g.mu.Lock()
	if !g.paused {
		g.mu.Unlock()
		return
	}
	g.paused = false
	ch := g.ch
	g.mu.Unlock()

	close(ch)
}

// Paused reports whether the gate is closed.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait returns nil once the gate is open, or ctx.Err() if ctx is done first.
// A wake-up is never trusted on its own: the paused flag is read again after
// every wake, so a Pause racing with a Resume blocks the waiter again.
func (g *Gate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		paused, ch := g.paused, g.ch
		g.mu.Unlock()

		if !paused {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
