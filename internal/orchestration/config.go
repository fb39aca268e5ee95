package orchestration

import (
	"math"
	"time"

	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/worker"
)

// DefaultIntervals are the per-worker step delays, in milliseconds, used when
// nothing else is configured.
var DefaultIntervals = []float64{400, 300, 500, 200}

// WorkerConfig configures one worker of a generation.
type WorkerConfig struct {
	// IntervalMillis is the delay between two steps. Fractional values keep
	// sub-millisecond precision.
	IntervalMillis float64
}

// Interval returns the configured delay as a duration.
func (c WorkerConfig) Interval() time.Duration {
	return worker.IntervalFromMillis(c.IntervalMillis)
}

// ConfigsFromIntervals builds one WorkerConfig per interval, in order.
func ConfigsFromIntervals(intervals []float64) []WorkerConfig {
	configs := make([]WorkerConfig, len(intervals))
	for i, ms := range intervals {
		configs[i] = WorkerConfig{IntervalMillis: ms}
	}
	return configs
}

// Intervals returns the millisecond intervals of configs, in order.
func Intervals(configs []WorkerConfig) []float64 {
	out := make([]float64, len(configs))
	for i, c := range configs {
		out[i] = c.IntervalMillis
	}
	return out
}

// ValidateConfigs checks that configs describe at least one worker and that
// every interval is a finite, positive number of milliseconds.
func ValidateConfigs(configs []WorkerConfig) error {
	if len(configs) == 0 {
		return apperrors.NewConfigError("at least one worker interval is required")
	}
	for i, c := range configs {
		ms := c.IntervalMillis
		if math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 {
			return apperrors.NewConfigError("worker %d: interval must be a positive number of milliseconds, got %v", i, ms)
		}
	}
	return nil
}
