// Package apperrors holds the error types shared by the coordinator and the
// frontends, and HandleRunError, which maps a run's final error to a
// diagnostic line and a process exit code.
//
// WorkerError wraps its cause; use errors.As to recover the worker index
// and errors.Is to test the cause.
package apperrors
