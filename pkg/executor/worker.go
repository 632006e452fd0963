package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/executor-agent/pkg/scheduler"
)

// States of a single task execution. The worker and the deadline callback
// race to move a run out of runRunning; the loser does nothing.
const (
	runRunning int32 = iota
	runDone
	runDiscarded
)

type run struct {
	task  *Task
	state atomic.Int32
}

type worker struct {
	name      string
	executor  *Executor
	scheduler Scheduler
	log       *zap.Logger
	discarded atomic.Bool
	current   atomic.Pointer[Task]
	done      chan struct{}
}

func newWorker(e *Executor, name string) *worker {
	return &worker{
		name:      name,
		executor:  e,
		scheduler: e.scheduler,
		log:       e.log.With(zap.String("worker", name)),
		done:      make(chan struct{}),
	}
}

func (w *worker) start() {
	w.log.Debug("starting worker")
	go w.serve()
}

func (w *worker) join() {
	w.log.Debug("waiting for worker")
	<-w.done
}

func (w *worker) serve() {
	defer close(w.done)
	w.executor.workerStarted(w)
	defer w.executor.workerStopped(w)

	labels := pprof.Labels("executor", w.executor.name, "worker", w.name)
	pprof.Do(context.Background(), labels, func(context.Context) {
		w.loop()
	})
}

func (w *worker) loop() {
	w.log.Debug("worker started")
	for {
		next := w.executor.nextTask()
		switch next.kind {
		case fetchStop:
			w.log.Debug("worker stopped")
			return
		case fetchTask:
			if !w.execute(next.task) {
				w.log.Debug("worker was discarded")
				return
			}
		}
	}
}

// execute runs one task and reports whether the worker may fetch another one.
func (w *worker) execute(t *Task) bool {
	r := &run{task: t}

	var deadline scheduler.Handle
	if t.HasTimeout() {
		deadline = w.scheduler.Schedule(t.Timeout, func() {
			w.discard(r)
		})
	}

	w.current.Store(t)
	start := time.Now()
	err := w.call(t)
	elapsed := time.Since(start)
	w.current.Store(nil)

	// The deadline may have fired already. It does not matter whether the
	// callable was still blocked or just returned: a discarded worker exits.
	if deadline != nil {
		deadline.Cancel()
	}
	keep := r.state.CompareAndSwap(runRunning, runDone)

	w.executor.observer.TaskFinished(w.executor.name, t, elapsed, err)
	return keep
}

func (w *worker) call(t *Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			w.log.Error("unhandled panic in task",
				zap.Stringer("task", t),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("task panicked: %v", rec)
		}
	}()

	if err := t.Fn(); err != nil {
		w.log.Error("unhandled error in task", zap.Stringer("task", t), zap.Error(err))
		return err
	}
	return nil
}

// discard runs on the scheduler goroutine when the task deadline expires.
func (w *worker) discard(r *run) {
	if !r.state.CompareAndSwap(runRunning, runDiscarded) {
		if r.state.Load() == runDiscarded {
			panic(fmt.Sprintf("attempt to discard worker %s twice", w.name))
		}
		w.log.Debug("deadline expired after task finished", zap.Stringer("task", r.task))
		return
	}
	if !w.discarded.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("attempt to discard worker %s twice", w.name))
	}

	w.log.Warn("worker discarded", zap.Stringer("task", r.task), zap.Duration("timeout", r.task.Timeout))
	w.executor.workerDiscarded(w, r.task)
}

func (w *worker) status() WorkerStatus {
	s := WorkerStatus{
		Name:      w.name,
		Discarded: w.discarded.Load(),
	}
	if t := w.current.Load(); t != nil {
		s.Task = t.String()
	}
	return s
}

func (w *worker) String() string {
	state := "waiting"
	if t := w.current.Load(); t != nil {
		state = "running " + t.String()
	}
	if w.discarded.Load() {
		state += " discarded"
	}
	return fmt.Sprintf("<Worker name=%s %s>", w.name, state)
}
