package executor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Callable is a unit of work run by a worker. A returned error or a panic is
// logged by the worker and does not affect the pool.
type Callable func() error

// Task is an immutable unit of work with an optional execution budget.
// A zero or negative Timeout means the task has no deadline.
type Task struct {
	ID      uuid.UUID
	Fn      Callable
	Timeout time.Duration
}

func newTask(fn Callable, timeout time.Duration) *Task {
	return &Task{
		ID:      uuid.New(),
		Fn:      fn,
		Timeout: timeout,
	}
}

// HasTimeout reports whether a deadline must be armed for this task.
func (t *Task) HasTimeout() bool {
	return t.Timeout > 0
}

func (t *Task) String() string {
	if t.HasTimeout() {
		return fmt.Sprintf("<Task id=%s timeout=%s>", t.ID, t.Timeout)
	}
	return fmt.Sprintf("<Task id=%s>", t.ID)
}
