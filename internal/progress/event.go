package progress

import "fmt"

// TargetSteps is the number of steps a worker performs before completing.
const TargetSteps = 100

// Kind identifies the notification carried by an Event.
type Kind uint8

// Supported event kinds.
const (
	KindStep Kind = iota + 1
	KindCompleted
	kindBarrier
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindCompleted:
		return "completed"
	case kindBarrier:
		return "barrier"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Event is one observable state change emitted by a worker.
type Event struct {
	// Generation is the ID of the generation that produced the event.
	Generation uint64
	// Worker is the worker's index within its generation.
	Worker int
	// Kind selects which sink notifications the event maps to.
	Kind Kind
	// Value is the worker's progress after the step (1..TargetSteps).
	Value int
	// WorkerTotal is the worker's cumulative count after the step.
	WorkerTotal int
	// GrandTotal is the shared total observed by the step.
	GrandTotal int

	ack chan struct{}
}

// StepEvent builds a KindStep event.
func StepEvent(generation uint64, worker, value, workerTotal, grandTotal int) Event {
	return Event{
		Generation:  generation,
		Worker:      worker,
		Kind:        KindStep,
		Value:       value,
		WorkerTotal: workerTotal,
		GrandTotal:  grandTotal,
	}
}

// CompletedEvent builds a KindCompleted event.
func CompletedEvent(generation uint64, worker int) Event {
	return Event{Generation: generation, Worker: worker, Kind: KindCompleted, Value: TargetSteps}
}
