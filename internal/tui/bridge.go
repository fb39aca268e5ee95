package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/tallyrun/internal/progress"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the sink can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe). It blocks
// until the event loop accepts the message or the program has exited.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// DashboardSink forwards progress notifications to the dashboard as
// bubbletea messages. Notifications sent before the program runs are
// dropped.
type DashboardSink struct {
	ref *programRef
}

var (
	_ progress.Sink               = (*DashboardSink)(nil)
	_ progress.Resetter           = (*DashboardSink)(nil)
	_ progress.CompletionObserver = (*DashboardSink)(nil)
)

// NewDashboardSink creates a sink that is not yet bound to a program.
func NewDashboardSink() *DashboardSink {
	return &DashboardSink{ref: &programRef{}}
}

// OnReset implements progress.Resetter.
func (s *DashboardSink) OnReset(workers int) {
	s.ref.Send(ResetMsg{Workers: workers})
}

// OnProgress implements progress.Sink.
func (s *DashboardSink) OnProgress(worker, value int) {
	s.ref.Send(ProgressMsg{Worker: worker, Value: value})
}

// OnWorkerTotalChanged implements progress.Sink.
func (s *DashboardSink) OnWorkerTotalChanged(worker, total int) {
	s.ref.Send(WorkerTotalMsg{Worker: worker, Total: total})
}

// OnGrandTotalChanged implements progress.Sink.
func (s *DashboardSink) OnGrandTotalChanged(total int) {
	s.ref.Send(GrandTotalMsg{Total: total})
}

// OnWorkerCompleted implements progress.CompletionObserver.
func (s *DashboardSink) OnWorkerCompleted(worker int) {
	s.ref.Send(WorkerCompletedMsg{Worker: worker})
}
