package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
	"github.com/kubev2v/executor-agent/pkg/executor"
)

const namespace = "executor"

// Exporter reports executor events as Prometheus metrics.
type Exporter struct {
	workers          *prometheus.GaugeVec
	workersDiscarded *prometheus.CounterVec
	tasksDispatched  *prometheus.CounterVec
	tasksRejected    *prometheus.CounterVec
	tasksFailed      *prometheus.CounterVec
	taskDuration     *prometheus.HistogramVec
}

var _ executor.Observer = (*Exporter)(nil)

// NewExporter creates and registers the executor collectors. Collectors which
// are already registered are reused, so several executors can share one
// registry.
func NewExporter(reg prometheus.Registerer) (*Exporter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	workers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "workers",
		Help:      "Number of live workers, discarded workers still blocked on a task included.",
	}, []string{"executor"})
	discarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workers_discarded_total",
		Help:      "Total number of workers discarded because a task exceeded its timeout.",
	}, []string{"executor"})
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_dispatched_total",
		Help:      "Total number of tasks queued.",
	}, []string{"executor"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_rejected_total",
		Help:      "Total number of tasks rejected by Dispatch.",
	}, []string{"executor", "reason"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_failed_total",
		Help:      "Total number of tasks which returned an error or panicked.",
	}, []string{"executor"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"executor"})

	var err error
	if workers, err = register(reg, workers); err != nil {
		return nil, err
	}
	if discarded, err = register(reg, discarded); err != nil {
		return nil, err
	}
	if dispatched, err = register(reg, dispatched); err != nil {
		return nil, err
	}
	if rejected, err = register(reg, rejected); err != nil {
		return nil, err
	}
	if failed, err = register(reg, failed); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &Exporter{
		workers:          workers,
		workersDiscarded: discarded,
		tasksDispatched:  dispatched,
		tasksRejected:    rejected,
		tasksFailed:      failed,
		taskDuration:     duration,
	}, nil
}

func (m *Exporter) WorkerStarted(name, _ string) {
	m.workers.WithLabelValues(name).Inc()
}

func (m *Exporter) WorkerStopped(name, _ string) {
	m.workers.WithLabelValues(name).Dec()
}

func (m *Exporter) WorkerDiscarded(name, _ string, _ *executor.Task) {
	m.workersDiscarded.WithLabelValues(name).Inc()
}

func (m *Exporter) TaskDispatched(name string, _ *executor.Task) {
	m.tasksDispatched.WithLabelValues(name).Inc()
}

func (m *Exporter) TaskRejected(name string, err error) {
	m.tasksRejected.WithLabelValues(name, rejectReason(err)).Inc()
}

func (m *Exporter) TaskFinished(name string, _ *executor.Task, elapsed time.Duration, err error) {
	m.taskDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		m.tasksFailed.WithLabelValues(name).Inc()
	}
}

func rejectReason(err error) string {
	switch {
	case srvErrors.IsTooManyTasksError(err):
		return "too_many_tasks"
	case srvErrors.IsNotRunningError(err):
		return "not_running"
	default:
		return "unknown"
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("collector type mismatch: %T", already.ExistingCollector)
		}
		return existing, nil
	}

	var zero T
	return zero, err
}
