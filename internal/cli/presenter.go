package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/format"
	"github.com/agbru/tallyrun/internal/metrics"
	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/progress"
	"github.com/agbru/tallyrun/internal/ui"
	"github.com/agbru/tallyrun/internal/worker"
)

// CLIResultPresenter renders run summaries as colorized tables.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
)

// PresentSummary prints one row per worker followed by the shared total
// and the wall time. Padding is computed on the plain text so ANSI codes
// do not skew the columns.
func (p CLIResultPresenter) PresentSummary(res orchestration.RunResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Run Summary (generation %d) ---\n", res.GenerationID)

	const (
		workerHdr   = "Worker"
		intervalHdr = "Interval"
		progressHdr = "Progress"
	)
	intervalLen := len(intervalHdr)
	for _, w := range res.Workers {
		if n := len(p.FormatDuration(w.Interval)); n > intervalLen {
			intervalLen = n
		}
	}

	fmt.Fprintf(out, "%s%s%s   %s%s%s%s   %s%s%s   %sState%s\n",
		ui.ColorUnderline(), workerHdr, ui.ColorReset(),
		ui.ColorUnderline(), intervalHdr, ui.ColorReset(), padRight("", intervalLen-len(intervalHdr)),
		ui.ColorUnderline(), progressHdr, ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset())

	for _, w := range res.Workers {
		id := "#" + strconv.Itoa(w.ID)
		interval := p.FormatDuration(w.Interval)
		prog := fmt.Sprintf("%3d/%d", w.Progress, progress.TargetSteps)
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s%s   %s\n",
			ui.ColorWorker(w.ID), id, ui.ColorReset(), padRight("", len(workerHdr)-len(id)),
			ui.ColorYellow(), interval, ui.ColorReset(), padRight("", intervalLen-len(interval)),
			prog, padRight("", len(progressHdr)-len(prog)),
			stateText(w.State))
	}

	fmt.Fprintf(out, "\nGrand total: %s%s%s\n", ui.ColorCyan(), format.GrandTotalText(res.GrandTotal, res.MaxTotal), ui.ColorReset())
	fmt.Fprintf(out, "Wall time:   %s%s%s\n", ui.ColorCyan(), p.FormatDuration(res.Duration), ui.ColorReset())
	if res.RunID != "" {
		fmt.Fprintf(out, "Run ID:      %s\n", res.RunID)
	}
}

func stateText(s worker.State) string {
	switch s {
	case worker.StateCompleted:
		return fmt.Sprintf("%s✅ %s%s", ui.ColorGreen(), s, ui.ColorReset())
	case worker.StateCancelled:
		return fmt.Sprintf("%s⏹ %s%s", ui.ColorYellow(), s, ui.ColorReset())
	default:
		return fmt.Sprintf("%s%s%s", ui.ColorMagenta(), s, ui.ColorReset())
	}
}

// padRight appends length spaces to s.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// FormatDuration formats a duration for display.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	return format.FormatExecutionDuration(d)
}

// HandleError reports err in red and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	fmt.Fprint(out, ui.ColorRed())
	code := apperrors.HandleRunError(err, duration, out)
	fmt.Fprint(out, ui.ColorReset())
	return code
}

// DisplayMemoryStats prints the memory readings taken around a run.
func DisplayMemoryStats(before, after metrics.MemorySnapshot, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:    %s\n", format.FormatBytes(after.HeapAlloc))
	fmt.Fprintf(out, "  Obtained (OS):  %s\n", format.FormatBytes(after.Sys))
	fmt.Fprintf(out, "  GC cycles:      %d\n", after.GCDuring(before))
	fmt.Fprintf(out, "  Goroutines:     %d\n", after.Goroutines)
}
