package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kubev2v/executor-agent/internal/models"
	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
	"github.com/kubev2v/executor-agent/pkg/executor"
)

const defaultDispatchTries = 5

type Dispatcher interface {
	Dispatch(fn executor.Callable, timeout time.Duration) error
}

type StatFunc func(path string) error

type MonitorOption func(*Monitor)

// WithStatFunc replaces os.Stat as the probe.
func WithStatFunc(fn StatFunc) MonitorOption {
	return func(m *Monitor) {
		m.stat = fn
	}
}

func WithDispatchBackOff(b backoff.BackOff, maxTries uint) MonitorOption {
	return func(m *Monitor) {
		m.backoff = func() backoff.BackOff { return b }
		m.maxTries = maxTries
	}
}

// Monitor periodically checks that a set of paths responds. Each check runs
// as an executor task bounded by the probe timeout, so a hung filesystem costs
// one discarded worker instead of the whole pool.
type Monitor struct {
	exec     Dispatcher
	paths    []string
	interval time.Duration
	timeout  time.Duration
	stat     StatFunc
	backoff  func() backoff.BackOff
	maxTries uint

	mu       sync.Mutex
	results  map[string]models.ProbeResult
	inflight map[string]time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewMonitor(exec Dispatcher, paths []string, interval, timeout time.Duration, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		exec:     exec,
		paths:    paths,
		interval: interval,
		timeout:  timeout,
		stat: func(path string) error {
			_, err := os.Stat(path)
			return err
		},
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = time.Second
			return b
		},
		maxTries: defaultDispatchTries,
		results:  make(map[string]models.ProbeResult, len(paths)),
		inflight: make(map[string]time.Time, len(paths)),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, p := range paths {
		m.results[p] = models.ProbeResult{Path: p, State: models.ProbeStatePending}
	}
	return m
}

// Start runs a check immediately and then every interval until ctx is
// canceled or Stop is called. Calls after the first one are no-ops.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		zap.S().Named("monitor").Debug("monitor already started")
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			if err := m.CheckNow(ctx); err != nil {
				zap.S().Named("monitor").Warnw("check round incomplete", "error", err)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	zap.S().Named("monitor").Infow("monitor started", "paths", m.paths, "interval", m.interval, "timeout", m.timeout)
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// CheckNow dispatches one probe per path. A path whose previous probe is still
// running is reported as stuck and not probed again.
func (m *Monitor) CheckNow(ctx context.Context) error {
	var errs []error
	for _, path := range m.paths {
		if !m.begin(path) {
			continue
		}

		if err := m.dispatch(ctx, path); err != nil {
			m.abort(path, err)
			errs = append(errs, fmt.Errorf("probe %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// Results returns the last known result of every path, sorted by path.
func (m *Monitor) Results() []models.ProbeResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]models.ProbeResult, 0, len(m.results))
	for _, r := range m.results {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

func (m *Monitor) dispatch(ctx context.Context, path string) error {
	probe := func() error {
		start := time.Now()
		err := m.stat(path)
		m.finish(path, time.Since(start), err)
		return err
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := m.exec.Dispatch(probe, m.timeout)
		if srvErrors.IsNotRunningError(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(m.backoff()), backoff.WithMaxTries(m.maxTries))

	return err
}

func (m *Monitor) begin(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if since, ok := m.inflight[path]; ok {
		m.results[path] = models.ProbeResult{
			Path:      path,
			State:     models.ProbeStateStuck,
			Error:     fmt.Sprintf("previous check running for %s", now.Sub(since).Round(time.Millisecond)),
			Latency:   now.Sub(since),
			CheckedAt: now,
		}
		return false
	}
	m.inflight[path] = now
	return true
}

func (m *Monitor) finish(path string, latency time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.inflight, path)
	r := models.ProbeResult{
		Path:      path,
		State:     models.ProbeStateOK,
		Latency:   latency,
		CheckedAt: time.Now(),
	}
	if err != nil {
		r.State = models.ProbeStateError
		r.Error = err.Error()
	}
	m.results[path] = r
}

func (m *Monitor) abort(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.inflight, path)
	m.results[path] = models.ProbeResult{
		Path:      path,
		State:     models.ProbeStateError,
		Error:     err.Error(),
		CheckedAt: time.Now(),
	}
}
