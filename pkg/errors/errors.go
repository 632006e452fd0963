package errors

import (
	"errors"
	"fmt"
)

// NotRunningError is returned when work is dispatched to an executor which
// was not started yet or is shutting down.
type NotRunningError struct {
	executor string
}

func NewNotRunningError(executor string) *NotRunningError {
	return &NotRunningError{executor: executor}
}

func (e *NotRunningError) Error() string {
	return fmt.Sprintf("executor %q is not running", e.executor)
}

func IsNotRunningError(err error) bool {
	var e *NotRunningError
	return errors.As(err, &e)
}

// AlreadyStartedError is returned when an executor is started more than once.
type AlreadyStartedError struct {
	executor string
}

func NewAlreadyStartedError(executor string) *AlreadyStartedError {
	return &AlreadyStartedError{executor: executor}
}

func (e *AlreadyStartedError) Error() string {
	return fmt.Sprintf("executor %q already started", e.executor)
}

func IsAlreadyStartedError(err error) bool {
	var e *AlreadyStartedError
	return errors.As(err, &e)
}

// TooManyTasksError is returned when the task queue is full.
type TooManyTasksError struct {
	capacity int
}

func NewTooManyTasksError(capacity int) *TooManyTasksError {
	return &TooManyTasksError{capacity: capacity}
}

func (e *TooManyTasksError) Error() string {
	return fmt.Sprintf("too many tasks: queue capacity %d reached", e.capacity)
}

func (e *TooManyTasksError) Capacity() int {
	return e.capacity
}

func IsTooManyTasksError(err error) bool {
	var e *TooManyTasksError
	return errors.As(err, &e)
}

// ResourceNotFoundError is returned by the store when a lookup matches nothing.
type ResourceNotFoundError struct {
	kind string
	id   string
}

func NewResourceNotFoundError(kind, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{kind: kind, id: id}
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.kind, e.id)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}
