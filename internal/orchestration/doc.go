// Package orchestration owns the lifecycle of worker generations. The
// Coordinator starts, pauses, resumes, resets and stops a generation of
// worker tasks and routes their events through a single progress.Dispatcher,
// so frontends only ever see events of the live generation.
package orchestration
