package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/tallyrun/internal/cli"
	"github.com/agbru/tallyrun/internal/config"
	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/tui"
)

// withTimeout bounds ctx by the configured -timeout. The cause of the
// deadline is an apperrors.TimeoutError.
func (a *Application) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeoutCause(ctx, a.Config.Timeout,
		apperrors.TimeoutError{Operation: "run", Limit: a.Config.Timeout})
}

// runBatch runs one generation to its end with a non-interactive display.
func (a *Application) runBatch(ctx context.Context, svc *services, out io.Writer) int {
	quiet := a.Config.Display == config.DisplayQuiet
	if !quiet {
		cli.PrintExecutionConfig(a.Config, out)
	}

	runCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	var startOpts []orchestration.StartOption
	if a.Config.ScriptedPause() {
		if a.Config.PauseAfter == 0 {
			startOpts = append(startOpts, orchestration.StartPaused())
		}
		go runPauseWindow(runCtx, svc.coord, a.Config.PauseAfter, a.Config.PauseFor, svc.logger)
	}

	if svc.spinner != nil {
		svc.spinner.Start()
	}
	before := svc.memory.Snapshot()
	res := orchestration.ExecuteRun(runCtx, svc.coord, orchestration.ConfigsFromIntervals(a.Config.Intervals), startOpts...)
	after := svc.memory.Snapshot()
	if svc.spinner != nil {
		svc.spinner.Stop()
	}
	if svc.bar != nil {
		svc.bar.Finish()
	}

	if errors.Is(res.Err, context.DeadlineExceeded) {
		res.Err = context.Cause(runCtx)
	}

	code, err := cli.DisplayResultWithConfig(out, res, cli.CLIResultPresenter{}, cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      quiet,
	})
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving summary: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if !quiet && len(res.Workers) > 0 {
		cli.DisplayMemoryStats(before, after, out)
	}
	return code
}

// runTUI launches the interactive dashboard and prints the summary of the
// last finished generation once it closes.
func (a *Application) runTUI(ctx context.Context, svc *services, out io.Writer) int {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(out)}
	if a.In != nil && a.In != io.Reader(os.Stdin) {
		progOpts = append(progOpts, tea.WithInput(a.In))
	}
	final, err := tui.Run(ctx, svc.dashboard, svc.coord, orchestration.ConfigsFromIntervals(a.Config.Intervals),
		tui.Options{Version: Version, Memory: svc.memory, HostLoad: true}, progOpts...)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}

	if res, ok := final.Result(); ok {
		cli.CLIResultPresenter{}.PresentSummary(res, out)
		if err := cli.WriteSummaryToFile(res, a.Config.OutputFile); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving summary: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
	}
	return final.ExitCode()
}

// runREPL starts the interactive command loop.
func (a *Application) runREPL(ctx context.Context, svc *services, out io.Writer) int {
	repl := cli.NewREPL(svc.coord, cli.REPLConfig{Intervals: a.Config.Intervals})
	repl.SetInput(a.In)
	repl.SetOutput(out)
	repl.Start(ctx)
	if ctx.Err() != nil {
		return apperrors.ExitErrorCanceled
	}
	return apperrors.ExitSuccess
}
