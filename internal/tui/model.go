package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/metrics"
	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/sysmon"
)

// Controller is the part of orchestration.Coordinator the dashboard drives.
type Controller interface {
	Start(ctx context.Context, configs []orchestration.WorkerConfig, opts ...orchestration.StartOption) (*orchestration.Generation, error)
	Reset(ctx context.Context, opts ...orchestration.StartOption) (*orchestration.Generation, error)
	Pause()
	Resume()
	Stop()
	Current() *orchestration.Generation
}

var _ Controller = (*orchestration.Coordinator)(nil)

// Options configures the dashboard.
type Options struct {
	// Version is shown in the header.
	Version string
	// Memory samples runtime memory on every tick. Nil disables sampling.
	Memory *metrics.MemoryCollector
	// HostLoad samples host-wide CPU and memory usage on every tick.
	HostLoad bool
	// StartOptions are applied to the first generation.
	StartOptions []orchestration.StartOption
}

// Layout constants for the TUI dashboard.
const (
	headerHeight          = 1
	footerHeight          = 1
	minBodyHeight         = 8
	WorkersPanelWidthPct  = 60
	tickInterval          = 250 * time.Millisecond
	defaultTerminalWidth  = 100
	defaultTerminalHeight = 24
)

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// bodyHeight returns the available height for the main body panels.
func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

// workersWidth returns the width allocated to the workers panel.
func (l LayoutManager) workersWidth() int {
	return l.width * WorkersPanelWidthPct / 100
}

// metricsWidth returns the width allocated to the metrics panel.
func (l LayoutManager) metricsWidth() int {
	return l.width - l.workersWidth()
}

// Model is the root bubbletea model for the TUI dashboard.
type Model struct {
	header  HeaderModel
	workers WorkersModel
	metrics MetricsModel
	footer  FooterModel

	keymap KeyMap

	LayoutManager

	ctx       context.Context
	coord     Controller
	configs   []orchestration.WorkerConfig
	startOpts []orchestration.StartOption
	memory    *metrics.MemoryCollector
	hostLoad  bool

	// generation is the live generation, 0 while a start is pending.
	generation uint64
	paused     bool
	done       bool
	quitting   bool
	result     *orchestration.RunResult
	exitCode   int
}

// NewModel creates a dashboard that runs configs on coord.
func NewModel(ctx context.Context, coord Controller, configs []orchestration.WorkerConfig, opts Options) Model {
	km := DefaultKeyMap()
	return Model{
		header:    NewHeaderModel(opts.Version),
		workers:   NewWorkersModel(),
		metrics:   NewMetricsModel(),
		footer:    NewFooterModel(km.ShortHelp()),
		keymap:    km,
		ctx:       ctx,
		coord:     coord,
		configs:   configs,
		startOpts: opts.StartOptions,
		memory:    opts.Memory,
		hostLoad:  opts.HostLoad,
		exitCode:  apperrors.ExitSuccess,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startCmd(m.ctx, m.coord, m.configs, m.startOpts...),
		watchContextCmd(m.ctx),
	)
}

// ExitCode returns the exit code of the session.
func (m Model) ExitCode() int { return m.exitCode }

// Result returns the result of the last generation that ended, if any.
func (m Model) Result() (orchestration.RunResult, bool) {
	if m.result == nil {
		return orchestration.RunResult{}, false
	}
	return *m.result, true
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ResetMsg:
		m.workers.Reset(msg.Workers)
		m.workers.SetSize(m.workersWidth(), m.bodyHeight())
		m.metrics.Reset()
		return m, nil

	case ProgressMsg:
		m.workers.SetProgress(msg.Worker, msg.Value)
		return m, nil

	case WorkerTotalMsg:
		m.workers.SetTotal(msg.Worker, msg.Total)
		return m, nil

	case GrandTotalMsg:
		m.workers.SetGrandTotal(msg.Total)
		return m, nil

	case WorkerCompletedMsg:
		m.workers.SetCompleted(msg.Worker)
		return m, nil

	case GenerationStartedMsg:
		if msg.Err != nil {
			m.footer.SetError(msg.Err.Error())
			m.exitCode = apperrors.HandleRunError(msg.Err, 0, io.Discard)
			m.done = true
			m.header.SetDone()
			return m, nil
		}
		m.generation = msg.Generation.ID()
		m.header.Start(m.generation)
		m.footer.SetError("")
		m.footer.SetDone(false)
		return m, waitCmd(msg.Generation)

	case GenerationDoneMsg:
		if msg.Generation != m.generation {
			return m, nil // stale message from a replaced generation
		}
		res := msg.Result
		m.result = &res
		m.exitCode = orchestration.AnalyzeRunResult(res, silentPresenter{}, io.Discard)
		m.done = true
		m.paused = false
		m.header.SetDone()
		m.footer.SetDone(true)
		m.footer.SetPaused(false)
		return m, nil

	case ContextCancelledMsg:
		m.exitCode = apperrors.HandleRunError(msg.Err, m.header.Elapsed(), io.Discard)
		m.quitting = true
		m.header.SetDone()
		return m, tea.Quit

	case TickMsg:
		if gen := m.coord.Current(); gen != nil && gen.ID() == m.generation && !m.done {
			m.workers.SyncStates(gen.Snapshot())
			m.paused = m.workers.AnyPaused()
			m.footer.SetPaused(m.paused)
			m.metrics.Sample(time.Time(msg), m.workers.GrandTotal(), m.workers.MaxTotal())
		}
		cmds := []tea.Cmd{sampleMemoryCmd(m.memory), tickCmd()}
		if m.hostLoad {
			cmds = append(cmds, sampleHostLoadCmd(m.ctx))
		}
		return m, tea.Batch(cmds...)

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case HostLoadMsg:
		m.metrics.UpdateHostLoad(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		if m.done || m.generation == 0 {
			return m, nil
		}
		if m.paused {
			m.coord.Resume()
		} else {
			m.coord.Pause()
		}
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		// Done messages of the replaced generation are ignored until the
		// new one reports its ID.
		m.generation = 0
		m.done = false
		m.paused = false
		m.result = nil
		m.exitCode = apperrors.ExitSuccess
		m.footer.SetPaused(false)
		m.footer.SetDone(false)
		m.footer.SetError("")
		return m, resetCmd(m.ctx, m.coord)

	case key.Matches(msg, m.keymap.Stop):
		if m.done || m.generation == 0 {
			return m, nil
		}
		return m, stopCmd(m.coord)
	}

	return m, nil
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.workers.View(), m.metrics.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.workers.SetSize(m.workersWidth(), m.bodyHeight())
	m.metrics.SetSize(m.metricsWidth(), m.bodyHeight())
}

// Run shows the dashboard until the user quits or ctx ends, and returns the
// session's exit code together with the final model. The sink must be the
// one coord delivers to.
func Run(ctx context.Context, sink *DashboardSink, coord Controller, configs []orchestration.WorkerConfig, opts Options, progOpts ...tea.ProgramOption) (Model, error) {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, coord, configs, opts)
	model.width, model.height = defaultTerminalWidth, defaultTerminalHeight
	model.layoutPanels()

	p := tea.NewProgram(model, progOpts...)
	sink.ref.SetProgram(p)
	defer sink.ref.SetProgram(nil)

	finalModel, err := p.Run()
	if err != nil {
		return model, err
	}
	if fm, ok := finalModel.(Model); ok {
		return fm, nil
	}
	return model, nil
}

// silentPresenter maps run results to exit codes without output.
type silentPresenter struct{}

func (silentPresenter) PresentSummary(orchestration.RunResult, io.Writer) {}

func (silentPresenter) HandleError(err error, d time.Duration, out io.Writer) int {
	return apperrors.HandleRunError(err, d, out)
}

// Coordinator calls run inside commands: Start and Stop wait for in-flight
// deliveries, which may be blocked sending to this event loop.

// startCmd starts a generation of configs.
func startCmd(ctx context.Context, coord Controller, configs []orchestration.WorkerConfig, opts ...orchestration.StartOption) tea.Cmd {
	return func() tea.Msg {
		gen, err := coord.Start(ctx, configs, opts...)
		return GenerationStartedMsg{Generation: gen, Err: err}
	}
}

// resetCmd restarts with the last configs.
func resetCmd(ctx context.Context, coord Controller) tea.Cmd {
	return func() tea.Msg {
		gen, err := coord.Reset(ctx)
		return GenerationStartedMsg{Generation: gen, Err: err}
	}
}

// stopCmd cancels the live generation; its waitCmd reports the end.
func stopCmd(coord Controller) tea.Cmd {
	return func() tea.Msg {
		coord.Stop()
		return nil
	}
}

// waitCmd reports when gen ends.
func waitCmd(gen *orchestration.Generation) tea.Cmd {
	return func() tea.Msg {
		<-gen.Done()
		return GenerationDoneMsg{
			Generation: gen.ID(),
			Result:     orchestration.ResultOf(gen, gen.Err()),
		}
	}
}

// tickCmd returns a command that sends a TickMsg after tickInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleMemoryCmd reads memory statistics from mc.
func sampleMemoryCmd(mc *metrics.MemoryCollector) tea.Cmd {
	if mc == nil {
		return nil
	}
	return func() tea.Msg {
		return MemStatsMsg(mc.Snapshot())
	}
}

// sampleHostLoadCmd reads host-wide CPU and memory usage.
func sampleHostLoadCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return HostLoadMsg(sysmon.Sample(ctx))
	}
}

// watchContextCmd waits for ctx to end.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}
