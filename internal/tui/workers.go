package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/tallyrun/internal/format"
	"github.com/agbru/tallyrun/internal/orchestration"
	tallyprogress "github.com/agbru/tallyrun/internal/progress"
	"github.com/agbru/tallyrun/internal/worker"
)

// workerRow is the display state of one worker.
type workerRow struct {
	value     int
	total     int
	state     string
	completed bool
	bar       progress.Model
}

// WorkersModel shows one progress bar per worker and the grand total.
type WorkersModel struct {
	rows     []workerRow
	grand    int
	overall  progress.Model
	width    int
	height   int
	barWidth int
}

// NewWorkersModel creates an empty workers panel.
func NewWorkersModel() WorkersModel {
	return WorkersModel{
		overall:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		barWidth: 30,
	}
}

func newWorkerBar(i, width int) progress.Model {
	opts := []progress.Option{progress.WithoutPercentage(), progress.WithWidth(width)}
	if c, ok := tuiTheme.WorkerColor(i).(lipgloss.Color); ok {
		opts = append(opts, progress.WithSolidFill(string(c)))
	}
	return progress.New(opts...)
}

// Reset replaces the rows with n pending workers and zeroes the total.
func (w *WorkersModel) Reset(n int) {
	w.rows = make([]workerRow, n)
	for i := range w.rows {
		w.rows[i] = workerRow{
			state: worker.StatePending.String(),
			bar:   newWorkerBar(i, w.barWidth),
		}
	}
	w.grand = 0
}

// Len returns the number of workers shown.
func (w WorkersModel) Len() int { return len(w.rows) }

// GrandTotal returns the highest shared total seen since the last Reset.
func (w WorkersModel) GrandTotal() int { return w.grand }

// MaxTotal returns the grand total of a completed generation.
func (w WorkersModel) MaxTotal() int { return len(w.rows) * tallyprogress.TargetSteps }

// Value returns the progress of worker i, or 0 when i is out of range.
func (w WorkersModel) Value(i int) int {
	if i < 0 || i >= len(w.rows) {
		return 0
	}
	return w.rows[i].value
}

// SetProgress records a step of worker i.
func (w *WorkersModel) SetProgress(i, value int) {
	if i < 0 || i >= len(w.rows) {
		return
	}
	r := &w.rows[i]
	r.value = value
	if !r.completed {
		r.state = worker.StateRunning.String()
	}
}

// SetTotal records the cumulative count of worker i.
func (w *WorkersModel) SetTotal(i, total int) {
	if i >= 0 && i < len(w.rows) {
		w.rows[i].total = total
	}
}

// SetGrandTotal records the shared total. Totals may arrive out of order,
// so only a higher value replaces the current one.
func (w *WorkersModel) SetGrandTotal(total int) {
	if total > w.grand {
		w.grand = total
	}
}

// SetCompleted marks worker i as completed.
func (w *WorkersModel) SetCompleted(i int) {
	if i >= 0 && i < len(w.rows) {
		w.rows[i].completed = true
		w.rows[i].state = worker.StateCompleted.String()
	}
}

// SyncStates copies worker states from a generation snapshot.
func (w *WorkersModel) SyncStates(snap orchestration.GenerationSnapshot) {
	if len(snap.Workers) != len(w.rows) {
		return
	}
	for i, s := range snap.Workers {
		if !w.rows[i].completed {
			w.rows[i].state = s.State
		}
	}
}

// AnyPaused reports whether a worker is waiting at its pause gate.
func (w WorkersModel) AnyPaused() bool {
	for _, r := range w.rows {
		if r.state == worker.StatePaused.String() {
			return true
		}
	}
	return false
}

// SetSize updates dimensions and resizes the bars.
func (w *WorkersModel) SetSize(width, height int) {
	w.width = width
	w.height = height
	w.barWidth = max(width-36, 10)
	for i := range w.rows {
		w.rows[i].bar.Width = w.barWidth
	}
	w.overall.Width = w.barWidth
}

// View renders the panel.
func (w WorkersModel) View() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("WORKERS"))
	b.WriteString("\n")

	if len(w.rows) == 0 {
		b.WriteString(workerStateStyle.Render("  waiting for the first generation"))
	}
	for i, r := range w.rows {
		frac := float64(r.value) / float64(tallyprogress.TargetSteps)
		fmt.Fprintf(&b, "\n %s %s %s %s",
			workerLabelStyle.Render(fmt.Sprintf("#%-2d", i)),
			r.bar.ViewAs(frac),
			metricValueStyle.Render(fmt.Sprintf("%3d/%d", r.value, tallyprogress.TargetSteps)),
			workerStateStyle.Render(r.state))
	}

	if len(w.rows) > 0 {
		frac := 0.0
		if m := w.MaxTotal(); m > 0 {
			frac = float64(w.grand) / float64(m)
		}
		fmt.Fprintf(&b, "\n\n %s %s %s",
			metricLabelStyle.Render("Total"),
			w.overall.ViewAs(frac),
			metricValueStyle.Render(format.GrandTotalText(w.grand, w.MaxTotal())))
	}

	style := panelStyle
	if w.width > 2 {
		style = style.Width(w.width - 2)
	}
	if w.height > 2 {
		style = style.Height(w.height - 2)
	}
	return style.Render(b.String())
}
