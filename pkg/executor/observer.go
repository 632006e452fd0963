package executor

import "time"

// Observer receives executor lifecycle events. Implementations must be safe
// for concurrent use and must not block: events are reported from dispatching
// goroutines, worker goroutines and the scheduler goroutine.
type Observer interface {
	WorkerStarted(executor, worker string)
	WorkerStopped(executor, worker string)
	// WorkerDiscarded is reported when a task exceeded its timeout. The task
	// is still running on the discarded worker.
	WorkerDiscarded(executor, worker string, task *Task)
	TaskDispatched(executor string, task *Task)
	TaskRejected(executor string, err error)
	// TaskFinished is reported once the callable returned. err is the
	// callable's error, or the recovered panic wrapped into an error.
	TaskFinished(executor string, task *Task, elapsed time.Duration, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) WorkerStarted(string, string)                     {}
func (NopObserver) WorkerStopped(string, string)                     {}
func (NopObserver) WorkerDiscarded(string, string, *Task)            {}
func (NopObserver) TaskDispatched(string, *Task)                     {}
func (NopObserver) TaskRejected(string, error)                       {}
func (NopObserver) TaskFinished(string, *Task, time.Duration, error) {}

type observers []Observer

// Observers fans events out to every given observer, in order.
func Observers(obs ...Observer) Observer {
	return observers(obs)
}

func (o observers) WorkerStarted(executor, worker string) {
	for _, ob := range o {
		ob.WorkerStarted(executor, worker)
	}
}

func (o observers) WorkerStopped(executor, worker string) {
	for _, ob := range o {
		ob.WorkerStopped(executor, worker)
	}
}

func (o observers) WorkerDiscarded(executor, worker string, task *Task) {
	for _, ob := range o {
		ob.WorkerDiscarded(executor, worker, task)
	}
}

func (o observers) TaskDispatched(executor string, task *Task) {
	for _, ob := range o {
		ob.TaskDispatched(executor, task)
	}
}

func (o observers) TaskRejected(executor string, err error) {
	for _, ob := range o {
		ob.TaskRejected(executor, err)
	}
}

func (o observers) TaskFinished(executor string, task *Task, elapsed time.Duration, err error) {
	for _, ob := range o {
		ob.TaskFinished(executor, task, elapsed, err)
	}
}
