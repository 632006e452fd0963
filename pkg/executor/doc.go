// Package executor implements a bounded, self-healing pool of workers for
// potentially blocking tasks.
//
// Each worker owns one goroutine which repeatedly takes a task from a bounded
// queue and runs it. A task may carry a timeout. When a worker is still busy
// past the timeout it is discarded: the pool stops counting it and spawns a
// replacement, while the discarded goroutine finishes its task and exits. A
// stuck task never reduces the capacity of the pool.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                            Executor                                 │
//	│                                                                     │
//	│  Dispatch(fn, timeout)                                              │
//	│         │                                                           │
//	│         ▼                                                           │
//	│  ┌─────────────────────────────────────────────────────────┐        │
//	│  │              TaskQueue (bounded, FIFO)                  │        │
//	│  │  [task1] [task2] [task3] ...           TooManyTasks ──► │ caller │
//	│  └─────────────────────────────────────────────────────────┘        │
//	│         │                     │                     │               │
//	│         ▼                     ▼                     ▼               │
//	│  ┌──────────────┐      ┌──────────────┐      ┌──────────────┐       │
//	│  │   Worker 0   │      │   Worker 1   │      │   Worker N   │       │
//	│  └──────┬───────┘      └──────────────┘      └──────────────┘       │
//	│         │ Schedule(timeout, discard)                                │
//	│         ▼                                                           │
//	│  ┌──────────────┐   discard   ┌─────────────────────────────┐       │
//	│  │  Scheduler   │ ──────────► │ workerDiscarded: add worker │       │
//	│  └──────────────┘             └─────────────────────────────┘       │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Worker Lifecycle
//
//	┌───────────┐   task    ┌───────────┐  deadline  ┌───────────┐
//	│  Waiting  │ ────────► │  Running  │ ─────────► │ Discarded │
//	└───────────┘           └─────┬─────┘            └─────┬─────┘
//	      ▲                       │                        │ task returns
//	      └───────────────────────┘                        ▼
//	            task returns                         ┌───────────┐
//	                                                 │  Stopped  │
//	      stop sentinel ───────────────────────────► └───────────┘
//
// The deadline callback runs on the scheduler goroutine while the worker runs
// the task. Both sides race on a single compare-and-swap of the task run
// state: if the task returns first the late deadline is a no-op, otherwise
// the worker is discarded and exits as soon as the task returns, without
// fetching more work. Discarding the same worker twice means this race was
// broken and panics.
//
// # Errors
//
// Dispatch and Start return errors from pkg/errors:
//   - NotRunningError: Dispatch before Start or after Stop
//   - AlreadyStartedError: Start called twice, or after Stop
//   - TooManyTasksError: the queue is full; the task was not queued
//
// Errors and panics of tasks are logged by the worker and never reach the
// caller or other workers.
//
// # Shutdown
//
// Stop clears the queue and pushes one stop sentinel per configured worker.
// Every waiting worker takes one sentinel and exits. Discarded workers exit
// when their task returns. Stop(true) joins every worker alive at the time
// of the call. An executor cannot be restarted.
//
// # Usage Example
//
//	sched := scheduler.New()
//	defer sched.Close()
//
//	exec := executor.New("storage", 4, 100, sched, executor.WithLogger(logger))
//	if err := exec.Start(); err != nil {
//	    return err
//	}
//	defer exec.Stop(true)
//
//	err := exec.Dispatch(func() error {
//	    _, err := os.Stat("/rhev/data-center/mnt/nfs")
//	    return err
//	}, 10*time.Second)
//	if srvErrors.IsTooManyTasksError(err) {
//	    // back off and retry later
//	}
package executor
