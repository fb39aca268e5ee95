package app

import (
	"context"
	"time"

	"github.com/agbru/tallyrun/internal/logging"
)

// pauser is the part of the coordinator driven by a scripted pause.
type pauser interface {
	Pause()
	Resume()
}

// runPauseWindow pauses ctl after `after` and resumes it `dur` later. It
// returns early when ctx ends; a pause in effect at that point is released.
func runPauseWindow(ctx context.Context, ctl pauser, after, dur time.Duration, logger logging.Logger) {
	timer := time.NewTimer(after)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	ctl.Pause()
	logger.Info("scripted pause", logging.Duration("for", dur))

	timer.Reset(dur)
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	ctl.Resume()
	logger.Info("scripted resume")
}
