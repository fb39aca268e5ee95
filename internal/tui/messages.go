package tui

import (
	"time"

	"github.com/agbru/tallyrun/internal/metrics"
	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/sysmon"
)

// ResetMsg clears the board for a generation of Workers workers.
type ResetMsg struct {
	Workers int
}

// ProgressMsg carries a worker's new progress value.
type ProgressMsg struct {
	Worker int
	Value  int
}

// WorkerTotalMsg carries a worker's cumulative count.
type WorkerTotalMsg struct {
	Worker int
	Total  int
}

// GrandTotalMsg carries the shared total after a step.
type GrandTotalMsg struct {
	Total int
}

// WorkerCompletedMsg reports that a worker took its last step.
type WorkerCompletedMsg struct {
	Worker int
}

// GenerationStartedMsg is the outcome of a Start or Reset request.
type GenerationStartedMsg struct {
	Generation *orchestration.Generation
	Err        error
}

// GenerationDoneMsg reports that a generation ended. It may arrive after a
// newer generation was started.
type GenerationDoneMsg struct {
	Generation uint64
	Result     orchestration.RunResult
}

// ContextCancelledMsg is sent when the dashboard's context ends.
type ContextCancelledMsg struct {
	Err error
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg carries a memory reading.
type MemStatsMsg metrics.MemorySnapshot

// HostLoadMsg carries a host-wide CPU and memory reading.
type HostLoadMsg sysmon.Load
