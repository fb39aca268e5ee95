package progress

import "sync"

// Board is a Sink that keeps the latest display state of a generation. It is
// safe for concurrent readers while the Dispatcher writes to it, which lets
// HTTP handlers, tickers and tests read a consistent Snapshot.
type Board struct {
	mu        sync.RWMutex
	values    []int
	totals    []int
	completed []bool
	grand     int
	resets    int
}

// BoardSnapshot is an immutable copy of a Board.
type BoardSnapshot struct {
	Values     []int  `json:"values"`
	Totals     []int  `json:"totals"`
	Completed  []bool `json:"completed"`
	GrandTotal int    `json:"grand_total"`
	Resets     int    `json:"resets"`
}

// Workers returns the number of workers on the board.
func (s BoardSnapshot) Workers() int { return len(s.Values) }

// MaxGrandTotal returns the grand total reached when every worker completes.
func (s BoardSnapshot) MaxGrandTotal() int { return len(s.Values) * TargetSteps }

// Done reports whether every worker on the board completed.
func (s BoardSnapshot) Done() bool {
	if len(s.Completed) == 0 {
		return false
	}
	for _, c := range s.Completed {
		if !c {
			return false
		}
	}
	return true
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{}
}

// OnReset clears the board and sizes it for workers.
func (b *Board) OnReset(workers int) {
	if workers < 0 {
		workers = 0
	}
	b.mu.Lock()
	b.values = make([]int, workers)
	b.totals = make([]int, workers)
	b.completed = make([]bool, workers)
	b.grand = 0
	b.resets++
	b.mu.Unlock()
}

// OnProgress records a worker's progress value.
func (b *Board) OnProgress(worker, value int) {
	b.mu.Lock()
	if b.grow(worker) {
		b.values[worker] = value
	}
	b.mu.Unlock()
}

// OnWorkerTotalChanged records a worker's cumulative count.
func (b *Board) OnWorkerTotalChanged(worker, total int) {
	b.mu.Lock()
	if b.grow(worker) {
		b.totals[worker] = total
	}
	b.mu.Unlock()
}

// OnGrandTotalChanged records the shared total. Totals from concurrent
// workers may arrive out of numeric order; the board keeps the highest.
func (b *Board) OnGrandTotalChanged(total int) {
	b.mu.Lock()
	if total > b.grand {
		b.grand = total
	}
	b.mu.Unlock()
}

// OnWorkerCompleted marks a worker as completed.
func (b *Board) OnWorkerCompleted(worker int) {
	b.mu.Lock()
	if b.grow(worker) {
		b.completed[worker] = true
	}
	b.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (b *Board) Snapshot() BoardSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return BoardSnapshot{
		Values:     append([]int(nil), b.values...),
		Totals:     append([]int(nil), b.totals...),
		Completed:  append([]bool(nil), b.completed...),
		GrandTotal: b.grand,
		Resets:     b.resets,
	}
}

// grow extends the slices so index worker is valid and reports whether it
// is. Callers hold b.mu.
func (b *Board) grow(worker int) bool {
	if worker < 0 {
		return false
	}
	if worker < len(b.values) {
		return true
	}
	n := worker + 1
	b.values = append(b.values, make([]int, n-len(b.values))...)
	b.totals = append(b.totals, make([]int, n-len(b.totals))...)
	b.completed = append(b.completed, make([]bool, n-len(b.completed))...)
	return true
}
