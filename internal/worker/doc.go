// Package worker implements a single bounded progress task.
//
// A Task advances its private counter from 0 to progress.TargetSteps, one
// step per interval, aggregating every step into a shared tally.Total and
// emitting one event per step. A Task observes cancellation through its
// context at the loop top, while paused, while emitting and while sleeping.
// Pausing is driven by a Gate owned solely by the task.
package worker
