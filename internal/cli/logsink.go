package cli

import (
	"github.com/rs/zerolog"

	"github.com/agbru/tallyrun/internal/progress"
)

// LogSink writes one structured log line per notification. Step lines are
// logged at debug level unless every is > 1, in which case every n-th step
// of a worker is logged at info level.
type LogSink struct {
	logger zerolog.Logger
	every  int
}

var (
	_ progress.Sink               = LogSink{}
	_ progress.Resetter           = LogSink{}
	_ progress.CompletionObserver = LogSink{}
)

// NewLogSink creates a log sink. every <= 1 logs each step at debug level.
func NewLogSink(logger zerolog.Logger, every int) LogSink {
	return LogSink{logger: logger.With().Str("component", "display").Logger(), every: every}
}

// OnReset logs a generation boundary.
func (s LogSink) OnReset(workers int) {
	s.logger.Info().Int("workers", workers).Msg("display reset")
}

// OnProgress logs a worker step.
func (s LogSink) OnProgress(worker, value int) {
	ev := s.logger.Debug()
	if s.every > 1 && value%s.every == 0 {
		ev = s.logger.Info()
	}
	ev.Int("worker", worker).Int("value", value).Msg("step")
}

// OnWorkerTotalChanged logs at trace level.
func (s LogSink) OnWorkerTotalChanged(worker, total int) {
	s.logger.Trace().Int("worker", worker).Int("worker_total", total).Msg("worker total")
}

// OnGrandTotalChanged logs at trace level.
func (s LogSink) OnGrandTotalChanged(total int) {
	s.logger.Trace().Int("grand_total", total).Msg("grand total")
}

// OnWorkerCompleted logs a finished worker.
func (s LogSink) OnWorkerCompleted(worker int) {
	s.logger.Info().Int("worker", worker).Msg("worker completed")
}
