package orchestration

import (
	"context"
	"fmt"
	"io"
	"time"

	apperrors "github.com/agbru/tallyrun/internal/errors"
)

// flushTimeout bounds the wait for queued events once a run ended.
const flushTimeout = 2 * time.Second

// ExecuteRun starts a generation with configs and blocks until it ended.
//
// When ctx ends first, the generation is stopped and the result carries
// ctx.Err(). Events still queued when the generation ended are flushed to the
// sink before ExecuteRun returns, so a summary never races the display.
func ExecuteRun(ctx context.Context, c *Coordinator, configs []WorkerConfig, opts ...StartOption) RunResult {
	gen, err := c.Start(ctx, configs, opts...)
	if err != nil {
		return RunResult{Err: err}
	}

	waitErr := gen.Wait(ctx)
	if ctx.Err() != nil {
		c.Stop()
		<-gen.Done()
		waitErr = ctx.Err()
	}

	c.Settle(ctx, flushTimeout)

	return ResultOf(gen, waitErr)
}

// ResultOf builds the RunResult of gen, attaching err.
func ResultOf(gen *Generation, err error) RunResult {
	res := RunResult{
		GenerationID: gen.ID(),
		RunID:        gen.RunID().String(),
		Workers:      make([]WorkerResult, gen.Len()),
		GrandTotal:   gen.GrandTotal(),
		MaxTotal:     gen.MaxGrandTotal(),
		Duration:     gen.Elapsed(),
		Err:          err,
	}
	for i := range res.Workers {
		s := gen.Task(i).Snapshot()
		res.Workers[i] = WorkerResult{
			ID:       s.ID,
			Progress: s.Progress,
			State:    s.State,
			Interval: s.Interval,
		}
	}
	return res
}

// AnalyzeRunResult reports a finished run and maps it to an exit code.
//
// It presents the summary, checks that the shared total matches the sum of
// the worker counters, and distinguishes complete runs from runs that ended
// early.
func AnalyzeRunResult(res RunResult, presenter ResultPresenter, out io.Writer) int {
	if res.Err != nil && len(res.Workers) == 0 {
		return presenter.HandleError(res.Err, res.Duration, out)
	}

	presenter.PresentSummary(res, out)

	if res.GrandTotal != res.WorkerSum() {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! Shared total %d differs from the worker sum %d.\n",
			res.GrandTotal, res.WorkerSum())
		return apperrors.ExitErrorGeneric
	}
	if res.Err != nil {
		return presenter.HandleError(res.Err, res.Duration, out)
	}
	if !res.Completed() {
		fmt.Fprintf(out, "\nGlobal Status: Incomplete. The run was stopped at %d of %d steps.\n",
			res.GrandTotal, res.MaxTotal)
		return apperrors.ExitErrorIncomplete
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. Every worker reached its target.\n")
	return apperrors.ExitSuccess
}
