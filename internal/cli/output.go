// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//   - Format* functions return a formatted string without performing I/O.
//   - Write* functions write data to files on the filesystem.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path of the JSON summary (empty for no file output).
	OutputFile string
	// Quiet prints a single machine-readable line instead of the table.
	Quiet bool
}

// RunSummary is the JSON document written by WriteSummaryToFile.
type RunSummary struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	GenerationID uint64          `json:"generation_id"`
	RunID        string          `json:"run_id"`
	DurationMs   float64         `json:"duration_ms"`
	GrandTotal   int             `json:"grand_total"`
	MaxTotal     int             `json:"max_total"`
	Completed    bool            `json:"completed"`
	Error        string          `json:"error,omitempty"`
	Workers      []WorkerSummary `json:"workers"`
}

// WorkerSummary is one worker of a RunSummary.
type WorkerSummary struct {
	ID         int     `json:"id"`
	Progress   int     `json:"progress"`
	State      string  `json:"state"`
	IntervalMs float64 `json:"interval_ms"`
}

// NewRunSummary converts a run result into its file form.
func NewRunSummary(res orchestration.RunResult) RunSummary {
	s := RunSummary{
		GeneratedAt:  time.Now().UTC(),
		GenerationID: res.GenerationID,
		RunID:        res.RunID,
		DurationMs:   float64(res.Duration) / float64(time.Millisecond),
		GrandTotal:   res.GrandTotal,
		MaxTotal:     res.MaxTotal,
		Completed:    res.Completed(),
		Workers:      make([]WorkerSummary, len(res.Workers)),
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	for i, w := range res.Workers {
		s.Workers[i] = WorkerSummary{
			ID:         w.ID,
			Progress:   w.Progress,
			State:      w.State.String(),
			IntervalMs: float64(w.Interval) / float64(time.Millisecond),
		}
	}
	return s
}

// WriteSummaryToFile writes res as indented JSON to path, creating parent
// directories. An empty path is a no-op.
func WriteSummaryToFile(res orchestration.RunResult, path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(NewRunSummary(res), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// FormatQuietResult renders a run as "grand_total/max_total", suitable for
// scripting.
func FormatQuietResult(res orchestration.RunResult) string {
	return fmt.Sprintf("%d/%d", res.GrandTotal, res.MaxTotal)
}

// DisplayQuietResult prints FormatQuietResult on its own line.
func DisplayQuietResult(out io.Writer, res orchestration.RunResult) {
	fmt.Fprintln(out, FormatQuietResult(res))
}

// DisplayResultWithConfig presents res, optionally writes it to a file, and
// returns the run's exit code.
func DisplayResultWithConfig(out io.Writer, res orchestration.RunResult, presenter orchestration.ResultPresenter, cfg OutputConfig) (int, error) {
	var code int
	if cfg.Quiet {
		if res.Err != nil && len(res.Workers) == 0 {
			code = presenter.HandleError(res.Err, res.Duration, out)
		} else {
			DisplayQuietResult(out, res)
			code = orchestration.AnalyzeRunResult(res, quietPresenter{presenter}, io.Discard)
		}
	} else {
		code = orchestration.AnalyzeRunResult(res, presenter, out)
	}

	if cfg.OutputFile != "" && len(res.Workers) > 0 {
		if err := WriteSummaryToFile(res, cfg.OutputFile); err != nil {
			return code, err
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "\n%s✓ Summary saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), cfg.OutputFile, ui.ColorReset())
		}
	}
	return code, nil
}

// quietPresenter suppresses the summary table but keeps error mapping.
type quietPresenter struct {
	orchestration.ResultPresenter
}

func (quietPresenter) PresentSummary(orchestration.RunResult, io.Writer) {}
