package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind is the type of an executor event recorded in the journal.
type EventKind string

const (
	// EventWorkerStarted - a worker was spawned, at start or as a replacement
	EventWorkerStarted EventKind = "worker_started"
	// EventWorkerStopped - a worker goroutine exited
	EventWorkerStopped EventKind = "worker_stopped"
	// EventWorkerDiscarded - a task exceeded its timeout and its worker was replaced
	EventWorkerDiscarded EventKind = "worker_discarded"
	// EventTaskFailed - a task returned an error or panicked
	EventTaskFailed EventKind = "task_failed"
	// EventTaskRejected - Dispatch refused a task
	EventTaskRejected EventKind = "task_rejected"
)

func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case EventWorkerStarted, EventWorkerStopped, EventWorkerDiscarded, EventTaskFailed, EventTaskRejected:
		return k, nil
	default:
		return "", fmt.Errorf("invalid event kind: %s", s)
	}
}

// Event is a single entry of the executor journal.
type Event struct {
	ID        uuid.UUID
	Executor  string
	Kind      EventKind
	Worker    string
	TaskID    string
	Message   string
	CreatedAt time.Time
}

func NewEvent(executor string, kind EventKind) Event {
	return Event{
		ID:        uuid.New(),
		Executor:  executor,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}
