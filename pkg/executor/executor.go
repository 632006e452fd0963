package executor

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
	"github.com/kubev2v/executor-agent/pkg/scheduler"
)

// Scheduler arms the deadline of tasks dispatched with a timeout.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) scheduler.Handle
}

type fetchKind int

const (
	fetchTask fetchKind = iota
	fetchStop
)

// fetch is the result of nextTask: a task to run, or the signal to exit.
type fetch struct {
	kind fetchKind
	task *Task
}

// Executor runs potentially blocking tasks on a fixed number of workers.
// Workers blocked on a task longer than its timeout are discarded and replaced.
type Executor struct {
	name         string
	workersCount int
	workerID     int
	tasks        *TaskQueue
	scheduler    Scheduler
	log          *zap.Logger
	observer     Observer

	// mu guards the lifecycle: running, stopped, workers and spawning.
	mu      sync.Mutex
	running bool
	stopped bool
	workers map[*worker]struct{}
}

func New(name string, workersCount, maxTasks int, sched Scheduler, opts ...Option) *Executor {
	e := &Executor{
		name:         name,
		workersCount: workersCount,
		tasks:        NewTaskQueue(maxTasks),
		scheduler:    sched,
		log:          zap.L(),
		observer:     NopObserver{},
		workers:      make(map[*worker]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("executor").With(zap.String("executor", name))
	return e
}

func (e *Executor) Name() string {
	return e.name
}

// Start spawns the workers. An executor can be started only once.
func (e *Executor) Start() error {
	e.log.Debug("starting executor")

	e.mu.Lock()
	if e.running || e.stopped {
		e.mu.Unlock()
		return srvErrors.NewAlreadyStartedError(e.name)
	}
	e.running = true
	for range e.workersCount {
		e.addWorker()
	}
	e.mu.Unlock()
	return nil
}

// Stop rejects new tasks, drops pending ones and signals every worker to
// exit. If wait is true, Stop blocks until the workers alive at the time of
// the call have exited, including discarded workers still blocked on a task.
// Calling Stop with wait from a task running on this executor deadlocks.
func (e *Executor) Stop(wait bool) {
	e.log.Debug("stopping executor")

	e.mu.Lock()
	e.running = false
	e.stopped = true
	if n := e.tasks.Len(); n > 0 {
		e.log.Info("dropping pending tasks", zap.Int("count", n))
	}
	e.tasks.Clear()
	for range e.workersCount {
		e.tasks.putStop()
	}
	var workers []*worker
	if wait {
		workers = slices.Collect(maps.Keys(e.workers))
	}
	e.mu.Unlock()

	for _, w := range workers {
		w.join()
	}
}

// Dispatch queues fn to run on one of the workers as soon as possible.
//
// The timeout is measured from the time fn is called. When it expires the
// worker running fn is discarded and replaced; fn itself keeps running.
// A zero timeout disables the deadline.
func (e *Executor) Dispatch(fn Callable, timeout time.Duration) error {
	task := newTask(fn, timeout)

	e.mu.Lock()
	err := e.put(task)
	e.mu.Unlock()

	if err != nil {
		e.observer.TaskRejected(e.name, err)
		return err
	}
	e.observer.TaskDispatched(e.name, task)
	return nil
}

func (e *Executor) put(task *Task) error {
	if !e.running {
		return srvErrors.NewNotRunningError(e.name)
	}
	return e.tasks.Put(task)
}

// Status returns a snapshot of the pool. It is a diagnostic helper and is
// not consistent with concurrent discards.
func (e *Executor) Status() Status {
	e.mu.Lock()
	workers := slices.Collect(maps.Keys(e.workers))
	running := e.running
	e.mu.Unlock()

	s := Status{
		Name:       e.name,
		Running:    running,
		Configured: e.workersCount,
		Queued:     e.tasks.Len(),
		Capacity:   e.tasks.Cap(),
		Workers:    make([]WorkerStatus, 0, len(workers)),
	}
	for _, w := range workers {
		s.Workers = append(s.Workers, w.status())
	}
	slices.SortFunc(s.Workers, func(a, b WorkerStatus) int {
		return compareWorkerNames(a.Name, b.Name)
	})
	return s
}

// Serving workers

// workerDiscarded is called from the scheduler goroutine when a worker was
// discarded. The worker goroutine is blocked on a task and exits when it
// returns.
func (e *Executor) workerDiscarded(w *worker, task *Task) {
	e.observer.WorkerDiscarded(e.name, w.name, task)

	e.mu.Lock()
	if e.running {
		e.addWorker()
	}
	e.mu.Unlock()

	// Debug helper, does not need to be precise.
	if ce := e.log.Check(zap.DebugLevel, "executor state"); ce != nil {
		e.mu.Lock()
		workers := slices.Collect(maps.Keys(e.workers))
		e.mu.Unlock()
		ce.Write(zap.Int("count", len(workers)), zap.Stringers("workers", workers))
	}
}

// workerStarted is called from the worker goroutine before it fetches its
// first task.
func (e *Executor) workerStarted(w *worker) {
	e.observer.WorkerStarted(e.name, w.name)
}

// workerStopped is called from the worker goroutine before it exits.
func (e *Executor) workerStopped(w *worker) {
	e.mu.Lock()
	delete(e.workers, w)
	e.mu.Unlock()

	e.observer.WorkerStopped(e.name, w.name)
}

// nextTask is called from the worker goroutine and blocks until a task or a
// stop sentinel is available.
func (e *Executor) nextTask() fetch {
	it := e.tasks.Get()
	if it.Stop {
		return fetch{kind: fetchStop}
	}
	return fetch{kind: fetchTask, task: it.Task}
}

// addWorker must be called with mu held.
func (e *Executor) addWorker() {
	name := fmt.Sprintf("%s/%d", e.name, e.workerID)
	e.workerID++
	w := newWorker(e, name)
	e.workers[w] = struct{}{}
	w.start()
}
