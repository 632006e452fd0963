package executor

import (
	"sync"

	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
)

// Item is a queue entry: either a task or the stop sentinel.
type Item struct {
	Task *Task
	Stop bool
}

var stopItem = Item{Stop: true}

type fifo[T any] []T

func (q *fifo[T]) Len() int { return len(*q) }

func (q *fifo[T]) Pop() T {
	old := *q
	x := old[0]
	var zero T
	old[0] = zero
	*q = old[1:]
	return x
}

func (q *fifo[T]) Push(t T) {
	*q = append(*q, t)
}

// TaskQueue is a bounded FIFO queue. Unlike a buffered channel, Put never
// blocks when the queue is full and the queue can be cleared, which is needed
// to deliver stop sentinels on shutdown.
type TaskQueue struct {
	capacity int
	items    fifo[Item]
	mu       sync.Mutex
	cond     *sync.Cond
}

func NewTaskQueue(capacity int) *TaskQueue {
	q := &TaskQueue{capacity: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put appends a task to the queue.
// Returns TooManyTasksError instead of blocking if the queue is full.
func (q *TaskQueue) Put(t *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Len() >= q.capacity {
		return srvErrors.NewTooManyTasksError(q.capacity)
	}
	q.items.Push(Item{Task: t})
	q.cond.Signal()
	return nil
}

// putStop appends a stop sentinel. Sentinels ignore the capacity limit.
func (q *TaskQueue) putStop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items.Push(stopItem)
	q.cond.Signal()
}

// Get removes and returns the head of the queue, blocking while it is empty.
func (q *TaskQueue) Get() Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Len() == 0 {
		q.cond.Wait()
	}
	return q.items.Pop()
}

// Clear drops every pending item.
func (q *TaskQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

func (q *TaskQueue) Cap() int {
	return q.capacity
}
