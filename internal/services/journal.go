package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/executor-agent/internal/models"
	"github.com/kubev2v/executor-agent/internal/store"
	"github.com/kubev2v/executor-agent/pkg/executor"
)

const (
	defaultJournalBuffer = 256
	journalBatchSize     = 64
	journalWriteTimeout  = 5 * time.Second
)

type EventRepository interface {
	Insert(ctx context.Context, events ...models.Event) error
	List(ctx context.Context, opts ...store.ListOption) ([]models.Event, error)
	Count(ctx context.Context, opts ...store.ListOption) (int, error)
}

type JournalListParams struct {
	Kinds  []models.EventKind
	Worker string
	Limit  uint64
	Offset uint64
}

type EventListResult struct {
	Events []models.Event
	Total  int
}

// Journal records executor events into the event store. Events are queued on
// a buffered channel and written by a single goroutine; when the buffer is
// full the event is dropped.
type Journal struct {
	executor.NopObserver

	repo   EventRepository
	events chan models.Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func NewJournal(repo EventRepository, buffer int) *Journal {
	if buffer <= 0 {
		buffer = defaultJournalBuffer
	}
	j := &Journal{
		repo:   repo,
		events: make(chan models.Event, buffer),
		done:   make(chan struct{}),
	}
	go j.run()
	return j
}

func (j *Journal) WorkerStarted(exec, worker string) {
	e := models.NewEvent(exec, models.EventWorkerStarted)
	e.Worker = worker
	j.record(e)
}

func (j *Journal) WorkerStopped(exec, worker string) {
	e := models.NewEvent(exec, models.EventWorkerStopped)
	e.Worker = worker
	j.record(e)
}

func (j *Journal) WorkerDiscarded(exec, worker string, task *executor.Task) {
	e := models.NewEvent(exec, models.EventWorkerDiscarded)
	e.Worker = worker
	e.TaskID = task.ID.String()
	e.Message = task.String()
	j.record(e)
}

func (j *Journal) TaskRejected(exec string, err error) {
	e := models.NewEvent(exec, models.EventTaskRejected)
	e.Message = err.Error()
	j.record(e)
}

func (j *Journal) TaskFinished(exec string, task *executor.Task, _ time.Duration, err error) {
	if err == nil {
		return
	}
	e := models.NewEvent(exec, models.EventTaskFailed)
	e.TaskID = task.ID.String()
	e.Message = err.Error()
	j.record(e)
}

// List returns a page of events along with the total matching count.
func (j *Journal) List(ctx context.Context, params JournalListParams) (*EventListResult, error) {
	filters := []store.ListOption{
		store.ByKinds(params.Kinds...),
		store.ByWorker(params.Worker),
	}

	total, err := j.repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	opts := filters
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	events, err := j.repo.List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &EventListResult{Events: events, Total: total}, nil
}

// Close flushes pending events and stops the writer. Safe to call more than once.
func (j *Journal) Close() {
	j.once.Do(func() {
		j.mu.Lock()
		j.closed = true
		close(j.events)
		j.mu.Unlock()
		<-j.done
	})
}

func (j *Journal) record(e models.Event) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return
	}

	select {
	case j.events <- e:
	default:
		zap.S().Named("journal").Warnw("journal buffer full, event dropped", "kind", e.Kind, "worker", e.Worker)
	}
}

func (j *Journal) run() {
	defer close(j.done)

	batch := make([]models.Event, 0, journalBatchSize)
	for e := range j.events {
		batch = append(batch, e)
	drain:
		for len(batch) < journalBatchSize {
			select {
			case next, ok := <-j.events:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}

		j.write(batch)
		batch = batch[:0]
	}
}

func (j *Journal) write(batch []models.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()

	if err := j.repo.Insert(ctx, batch...); err != nil {
		zap.S().Named("journal").Errorw("failed to write events", "count", len(batch), "error", err)
	}
}
