// Package cli provides the terminal frontends of tallyrun: spinner, bar and
// log display sinks, the result presenter, the interactive REPL and shell
// completion scripts.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agbru/tallyrun/internal/config"
	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/format"
	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/progress"
	"github.com/agbru/tallyrun/internal/ui"
)

// workerBarWidth is the bar width used by the status command.
const workerBarWidth = 20

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Intervals are used by "start" without arguments.
	Intervals []float64
}

// REPL drives a Coordinator from interactive commands.
type REPL struct {
	config REPLConfig
	coord  *orchestration.Coordinator
	in     io.Reader
	out    io.Writer
}

// NewREPL creates a REPL bound to c.
func NewREPL(c *orchestration.Coordinator, config REPLConfig) *REPL {
	return &REPL{
		config: config,
		coord:  c,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads commands until quit, EOF or ctx ends. The live generation is
// stopped on exit.
func (r *REPL) Start(ctx context.Context) {
	defer r.coord.Stop()

	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for ctx.Err() == nil {
		fmt.Fprint(r.out, ui.ColorGreen()+"tally> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && strings.TrimSpace(input) != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !r.processCommand(ctx, input) {
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sTallyrun - Interactive Mode%s              %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstart [ms,...]%s - Start a generation (default %s)\n", ui.ColorYellow(), ui.ColorReset(), config.FormatIntervals(r.config.Intervals))
	fmt.Fprintf(r.out, "  %spause%s          - Pause every worker\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sresume%s         - Resume every worker\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sreset%s          - Restart with the last intervals\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstop%s           - Cancel the running generation\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s         - Show worker progress\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %swait [dur]%s     - Wait for the generation to end, then summarize\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s           - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s    - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
}

// processCommand executes one command. It returns false when the REPL
// should exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "start", "s":
		r.cmdStart(ctx, args)
	case "pause", "p":
		r.coord.Pause()
		fmt.Fprintf(r.out, "%sPaused.%s\n", ui.ColorYellow(), ui.ColorReset())
	case "resume", "r":
		r.coord.Resume()
		fmt.Fprintf(r.out, "%sResumed.%s\n", ui.ColorGreen(), ui.ColorReset())
	case "reset":
		gen, err := r.coord.Reset(ctx)
		r.reportStart(gen, err)
	case "stop":
		r.coord.Stop()
		fmt.Fprintf(r.out, "%sStopped.%s\n", ui.ColorYellow(), ui.ColorReset())
	case "status", "st":
		r.cmdStatus()
	case "wait", "w":
		r.cmdWait(ctx, args)
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}
	return true
}

func (r *REPL) cmdStart(ctx context.Context, args []string) {
	intervals := r.config.Intervals
	if len(args) > 0 {
		parsed, err := config.ParseIntervals(strings.Join(args, ","))
		if err != nil {
			fmt.Fprintf(r.out, "%sInvalid intervals: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		intervals = parsed
	}
	gen, err := r.coord.Start(ctx, orchestration.ConfigsFromIntervals(intervals))
	r.reportStart(gen, err)
}

func (r *REPL) reportStart(gen *orchestration.Generation, err error) {
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	fmt.Fprintf(r.out, "Generation %s%d%s started with %s%d%s workers (%s ms).\n",
		ui.ColorMagenta(), gen.ID(), ui.ColorReset(),
		ui.ColorCyan(), gen.Len(), ui.ColorReset(),
		config.FormatIntervals(orchestration.Intervals(gen.Configs())))
}

func (r *REPL) cmdStatus() {
	gen := r.coord.Current()
	if gen == nil {
		fmt.Fprintln(r.out, "No generation. Type start to begin.")
		return
	}
	snap := gen.Snapshot()
	fmt.Fprintf(r.out, "\n%sGeneration %d%s (%s)\n", ui.ColorBold(), snap.ID, ui.ColorReset(), format.FormatExecutionDuration(snap.Elapsed))
	for _, w := range snap.Workers {
		fmt.Fprintf(r.out, "  %s%s%s  %s\n",
			ui.ColorBlue(), format.WorkerLine(w.ID, w.Progress, progress.TargetSteps, workerBarWidth), ui.ColorReset(), w.State)
	}
	fmt.Fprintf(r.out, "  Total: %s%s%s\n\n", ui.ColorCyan(), format.GrandTotalText(snap.GrandTotal, snap.MaxTotal), ui.ColorReset())
}

func (r *REPL) cmdWait(ctx context.Context, args []string) {
	gen := r.coord.Current()
	if gen == nil {
		fmt.Fprintln(r.out, "No generation. Type start to begin.")
		return
	}
	if len(args) > 0 {
		d, err := time.ParseDuration(args[0])
		if err != nil || d <= 0 {
			fmt.Fprintf(r.out, "%sInvalid duration: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
			return
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	if err := gen.Wait(ctx); err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) && len(args) > 0:
			fmt.Fprintf(r.out, "Still running after %s.\n", args[0])
		case apperrors.IsContextError(err):
			fmt.Fprintln(r.out, "Wait interrupted.")
		default:
			fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		}
		return
	}
	r.coord.Settle(ctx, time.Second)
	CLIResultPresenter{}.PresentSummary(orchestration.ResultOf(gen, gen.Err()), r.out)
	fmt.Fprintln(r.out)
}
