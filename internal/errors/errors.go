package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Process exit codes.
const (
	ExitSuccess         = 0
	ExitErrorGeneric    = 1
	ExitErrorTimeout    = 2   // -timeout elapsed
	ExitErrorIncomplete = 3   // a worker faulted before its target
	ExitErrorConfig     = 4   // bad flags or an invalid Start
	ExitErrorCanceled   = 130 // SIGINT
)

// ConfigError represents a user configuration error, such as an empty worker
// list or a non-positive interval. It is reported synchronously by
// Coordinator.Start and by flag parsing.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// WorkerError reports a fault raised inside a worker step. The shared total
// stays consistent because the step's critical section releases its lock on
// every exit path; the error only tells the caller the worker stopped early.
type WorkerError struct {
	// Worker is the index of the faulted worker within its generation.
	Worker int
	// Cause is the underlying error or recovered panic value.
	Cause error
}

// Error returns a message naming the worker and its cause.
func (e WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %v", e.Worker, e.Cause)
}

// Unwrap returns Cause.
func (e WorkerError) Unwrap() error { return e.Cause }

// TimeoutError is the cause attached to a run context when -timeout elapses.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError names the flag or field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError prefixes err with a formatted context message, keeping it
// reachable through errors.Is and errors.As. A nil err stays nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsConfigError reports whether err carries a ConfigError or ValidationError.
func IsConfigError(err error) bool {
	var configErr ConfigError
	var validationErr ValidationError
	return errors.As(err, &configErr) || errors.As(err, &validationErr)
}

// HandleRunError writes a one-line diagnostic for err to out and maps it to
// an exit code. A nil error yields ExitSuccess and writes nothing.
func HandleRunError(err error, duration time.Duration, out io.Writer) int {
	if err == nil {
		return ExitSuccess
	}
	if out == nil {
		out = io.Discard
	}

	var timeoutErr TimeoutError
	var workerErr WorkerError
	switch {
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "Run stopped: time limit reached after %s\n", duration.Round(time.Millisecond))
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "Run canceled after %s\n", duration.Round(time.Millisecond))
		return ExitErrorCanceled
	case IsConfigError(err):
		fmt.Fprintf(out, "Configuration error: %v\n", err)
		return ExitErrorConfig
	case errors.As(err, &workerErr):
		fmt.Fprintf(out, "Run incomplete: %v\n", err)
		return ExitErrorIncomplete
	default:
		fmt.Fprintf(out, "Error: %v\n", err)
		return ExitErrorGeneric
	}
}
