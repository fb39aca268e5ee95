package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/tallyrun/internal/config"
	"github.com/agbru/tallyrun/internal/format"
	"github.com/agbru/tallyrun/internal/ui"
)

// PrintExecutionConfig displays the run configuration: worker cadences,
// limits and the Go environment.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Running %s%d%s workers with intervals %s%s%s ms.\n",
		ui.ColorMagenta(), len(cfg.Intervals), ui.ColorReset(),
		ui.ColorYellow(), config.FormatIntervals(cfg.Intervals), ui.ColorReset())
	if cfg.Timeout > 0 {
		fmt.Fprintf(out, "Time limit: %s%s%s.\n", ui.ColorYellow(), format.FormatExecutionDuration(cfg.Timeout), ui.ColorReset())
	}
	if cfg.ScriptedPause() {
		fmt.Fprintf(out, "Scripted pause: after %s%s%s for %s%s%s.\n",
			ui.ColorYellow(), cfg.PauseAfter, ui.ColorReset(),
			ui.ColorYellow(), cfg.PauseFor, ui.ColorReset())
	}
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
