package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/metrics"
	"github.com/agbru/tallyrun/internal/worker"
)

func TestPresentSummary(t *testing.T) {
	plainOutput(t)

	res := completedResult()
	res.Workers[1].State = worker.StateCancelled
	res.Workers[1].Progress = 42

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentSummary(res, &buf)
	out := buf.String()

	for _, want := range []string{
		"Run Summary (generation 3)",
		"Worker   Interval   Progress   State",
		"#0       400ms      100/100    ✅ completed",
		"#1       300ms       42/100    ⏹ cancelled",
		"200 / 200 (100%)",
		"1.5s",
		"run-1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary should contain %q, got:\n%s", want, out)
		}
	}
}

func TestHandleError(t *testing.T) {
	plainOutput(t)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, apperrors.ExitSuccess},
		{"canceled", context.Canceled, apperrors.ExitErrorCanceled},
		{"timeout", apperrors.TimeoutError{Limit: time.Second}, apperrors.ExitErrorTimeout},
		{"config", apperrors.NewConfigError("bad"), apperrors.ExitErrorConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := (CLIResultPresenter{}).HandleError(tt.err, time.Second, &buf); got != tt.want {
				t.Errorf("HandleError = %d, want %d", got, tt.want)
			}
			if tt.err == nil && buf.Len() != 0 {
				t.Errorf("nil error should print nothing, got %q", buf.String())
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	p := CLIResultPresenter{}
	if got := p.FormatDuration(0); got != "0s" {
		t.Errorf("FormatDuration(0) = %q", got)
	}
	if got := p.FormatDuration(250 * time.Millisecond); got != "250ms" {
		t.Errorf("FormatDuration(250ms) = %q", got)
	}
}

func TestDisplayMemoryStats(t *testing.T) {
	t.Parallel()
	before := metrics.MemorySnapshot{NumGC: 2}
	after := metrics.MemorySnapshot{HeapAlloc: 2048, Sys: 4 << 20, NumGC: 5, Goroutines: 7}

	var buf bytes.Buffer
	DisplayMemoryStats(before, after, &buf)
	out := buf.String()
	for _, want := range []string{"2.00 KiB", "4.00 MiB", "GC cycles:      3", "Goroutines:     7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}
