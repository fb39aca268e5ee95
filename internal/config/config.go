// Package config parses the command line and environment into an AppConfig.
//
// Priority is CLI flags > TALLYRUN_* environment variables > defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/tallyrun/internal/errors"
)

// EnvPrefix is prepended to every environment variable name read by the
// configuration.
const EnvPrefix = "TALLYRUN_"

// Display modes.
const (
	DisplayCLI   = "cli"
	DisplayBar   = "bar"
	DisplayLog   = "log"
	DisplayTUI   = "tui"
	DisplayREPL  = "repl"
	DisplayQuiet = "quiet"
)

// Trace exporters.
const (
	TraceNone   = "none"
	TraceStdout = "stdout"
	TraceFile   = "file"
)

// DefaultIntervals are the per-worker step delays in milliseconds.
const DefaultIntervals = "400,300,500,200"

// DisplayModes lists the accepted -display values.
var DisplayModes = []string{DisplayCLI, DisplayBar, DisplayLog, DisplayTUI, DisplayREPL, DisplayQuiet}

// TraceExporters lists the accepted -trace values.
var TraceExporters = []string{TraceNone, TraceStdout, TraceFile}

// CompletionShells lists the accepted -completion values.
var CompletionShells = []string{"bash", "zsh", "fish"}

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Intervals holds one step delay per worker, in milliseconds.
	Intervals []float64
	// Display selects the frontend.
	Display string
	// Timeout stops the run from the outside after this long. Zero means no
	// limit.
	Timeout time.Duration
	// PauseAfter and PauseFor script a pause window: the run is paused
	// PauseAfter after it starts and resumed PauseFor later.
	PauseAfter time.Duration
	PauseFor   time.Duration
	// MetricsAddr enables the HTTP status server when non-empty.
	MetricsAddr string
	// Trace selects the span exporter.
	Trace string
	// TraceFile is the JSONL destination of the file exporter.
	TraceFile string
	// LogLevel is a zerolog level name.
	LogLevel string
	// OutputFile receives a JSON summary of the run when non-empty.
	OutputFile string
	// NoColor disables ANSI colors.
	NoColor bool
	// Completion prints a shell completion script and exits.
	Completion string
	// ShowVersion prints the version and exits.
	ShowVersion bool
}

// intervalsValue implements flag.Value for a comma-separated interval list.
type intervalsValue struct {
	target *[]float64
}

func (v intervalsValue) String() string {
	if v.target == nil {
		return ""
	}
	return FormatIntervals(*v.target)
}

func (v intervalsValue) Set(s string) error {
	parsed, err := ParseIntervals(s)
	if err != nil {
		return err
	}
	*v.target = parsed
	return nil
}

// ParseIntervals parses "400,300.5,200" into millisecond values. Blanks
// around entries are ignored. It does not check the sign of the values;
// Validate does.
func ParseIntervals(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, apperrors.NewConfigError("interval list is empty")
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, apperrors.NewConfigError("interval %d: %q is not a number", i, p)
		}
		out = append(out, v)
	}
	return out, nil
}

// FormatIntervals renders intervals in the form accepted by ParseIntervals.
func FormatIntervals(intervals []float64) string {
	parts := make([]string, len(intervals))
	for i, v := range intervals {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// ParseConfig parses args (without the program name) into an AppConfig,
// applies environment overrides for flags that were not set, and validates
// the result. Usage and parse errors are written to errorWriter.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	defaults, _ := ParseIntervals(DefaultIntervals)
	config := AppConfig{Intervals: defaults}

	fs.Var(intervalsValue{&config.Intervals}, "intervals", "Comma-separated step delays in milliseconds, one per worker.")
	fs.StringVar(&config.Display, "display", DisplayCLI, "Frontend: "+strings.Join(DisplayModes, ", ")+".")
	fs.DurationVar(&config.Timeout, "timeout", 0, "Stop the run after this duration (0 = no limit).")
	fs.DurationVar(&config.PauseAfter, "pause-after", 0, "Pause the run this long after it starts (with -pause-for).")
	fs.DurationVar(&config.PauseFor, "pause-for", 0, "Resume a scripted pause after this duration.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve /metrics, /status and /healthz on this address.")
	fs.StringVar(&config.Trace, "trace", TraceNone, "Span exporter: "+strings.Join(TraceExporters, ", ")+".")
	fs.StringVar(&config.TraceFile, "trace-file", "", "Destination of the file span exporter (JSONL).")
	fs.StringVar(&config.LogLevel, "log-level", zerolog.InfoLevel.String(), "Log level: debug, info, warn, error.")
	fs.StringVar(&config.OutputFile, "output", "", "Write a JSON run summary to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for -output.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for "+strings.Join(CompletionShells, ", ")+".")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print the version and exit.")
	fs.BoolVar(&config.ShowVersion, "V", false, "Shorthand for -version.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if err := applyEnvOverrides(&config, fs); err != nil {
		return AppConfig{}, err
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, err)
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks every field and returns an apperrors.ValidationError for
// the first invalid one.
func (c AppConfig) Validate() error {
	if c.Completion != "" {
		if !contains(CompletionShells, c.Completion) {
			return apperrors.ValidationError{Field: "completion", Message: fmt.Sprintf("unsupported shell %q", c.Completion)}
		}
		return nil
	}
	if c.ShowVersion {
		return nil
	}
	if len(c.Intervals) == 0 {
		return apperrors.ValidationError{Field: "intervals", Message: "at least one worker interval is required"}
	}
	for i, ms := range c.Intervals {
		if math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 {
			return apperrors.ValidationError{Field: "intervals", Message: fmt.Sprintf("worker %d: interval must be positive, got %v", i, ms)}
		}
	}
	if !contains(DisplayModes, c.Display) {
		return apperrors.ValidationError{Field: "display", Message: fmt.Sprintf("unknown mode %q", c.Display)}
	}
	if c.Timeout < 0 {
		return apperrors.ValidationError{Field: "timeout", Message: "must not be negative"}
	}
	if c.PauseAfter < 0 || c.PauseFor < 0 {
		return apperrors.ValidationError{Field: "pause-after", Message: "pause window must not be negative"}
	}
	if c.PauseFor > 0 && (c.Display == DisplayREPL || c.Display == DisplayTUI) {
		return apperrors.ValidationError{Field: "pause-for", Message: "scripted pauses are not available in interactive modes"}
	}
	if !contains(TraceExporters, c.Trace) {
		return apperrors.ValidationError{Field: "trace", Message: fmt.Sprintf("unknown exporter %q", c.Trace)}
	}
	if c.Trace == TraceFile && c.TraceFile == "" {
		return apperrors.ValidationError{Field: "trace-file", Message: "required with -trace file"}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.ValidationError{Field: "log-level", Message: err.Error()}
	}
	return nil
}

// ScriptedPause reports whether a pause window is configured.
func (c AppConfig) ScriptedPause() bool {
	return c.PauseFor > 0
}

// Level returns the zerolog level of c.LogLevel, defaulting to info.
func (c AppConfig) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
