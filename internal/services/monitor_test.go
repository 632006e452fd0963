package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/executor-agent/internal/models"
	"github.com/kubev2v/executor-agent/internal/services"
	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
	"github.com/kubev2v/executor-agent/pkg/executor"
	"github.com/kubev2v/executor-agent/pkg/scheduler"
)

// flakyDispatcher rejects the first n dispatches and runs the rest inline.
type flakyDispatcher struct {
	reject int32
	calls  atomic.Int32
	err    error
}

func (d *flakyDispatcher) Dispatch(fn executor.Callable, _ time.Duration) error {
	n := d.calls.Add(1)
	if d.reject < 0 || n <= d.reject {
		return d.err
	}
	return fn()
}

func resultFor(m *services.Monitor, path string) models.ProbeResult {
	for _, r := range m.Results() {
		if r.Path == path {
			return r
		}
	}
	return models.ProbeResult{}
}

var _ = Describe("Monitor", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should report pending before the first check", func() {
		m := services.NewMonitor(&flakyDispatcher{}, []string{"/b", "/a"}, time.Minute, time.Second)

		results := m.Results()
		Expect(results).To(HaveLen(2))
		Expect(results[0].Path).To(Equal("/a"))
		Expect(results[0].State).To(Equal(models.ProbeStatePending))
	})

	// Given a monitor started twice
	// When it is stopped
	// Then no check loop keeps running
	It("should ignore a second Start", func() {
		var probes atomic.Int32
		m := services.NewMonitor(&flakyDispatcher{}, []string{"/a"}, 10*time.Millisecond, time.Second,
			services.WithStatFunc(func(string) error {
				probes.Add(1)
				return nil
			}))

		m.Start(ctx)
		m.Start(ctx)
		Eventually(probes.Load).Should(BeNumerically(">=", 3))
		m.Stop()

		n := probes.Load()
		Consistently(probes.Load, 100*time.Millisecond).Should(Equal(n))
	})

	Context("with an executor", func() {
		var (
			sched   *scheduler.Scheduler
			exec    *executor.Executor
			mu      sync.Mutex
			hang    chan struct{}
			statErr map[string]error
		)

		stat := func(path string) error {
			mu.Lock()
			err, ok := statErr[path]
			mu.Unlock()
			if path == "/hang" {
				<-hang
			}
			if ok {
				return err
			}
			return nil
		}

		BeforeEach(func() {
			hang = make(chan struct{})
			statErr = map[string]error{}
			sched = scheduler.New()
			exec = executor.New("monitor", 2, 8, sched)
			Expect(exec.Start()).To(Succeed())
		})

		AfterEach(func() {
			close(hang)
			exec.Stop(true)
			sched.Close()
		})

		// Given two healthy paths
		// When a check round runs
		// Then both report ok
		It("should report healthy paths", func() {
			m := services.NewMonitor(exec, []string{"/a", "/b"}, time.Minute, time.Second, services.WithStatFunc(stat))

			Expect(m.CheckNow(ctx)).To(Succeed())

			Eventually(func() models.ProbeState { return resultFor(m, "/a").State }).Should(Equal(models.ProbeStateOK))
			Eventually(func() models.ProbeState { return resultFor(m, "/b").State }).Should(Equal(models.ProbeStateOK))
		})

		It("should report stat errors", func() {
			statErr["/gone"] = errors.New("no such file or directory")
			m := services.NewMonitor(exec, []string{"/gone"}, time.Minute, time.Second, services.WithStatFunc(stat))

			Expect(m.CheckNow(ctx)).To(Succeed())

			Eventually(func() models.ProbeState { return resultFor(m, "/gone").State }).Should(Equal(models.ProbeStateError))
			Expect(resultFor(m, "/gone").Error).To(ContainSubstring("no such file"))
		})

		// Given a path whose stat never returns
		// When two rounds run past the probe timeout
		// Then the path is stuck, its worker is discarded and the pool is refilled
		It("should mark a hanging path stuck and keep the pool at strength", func() {
			m := services.NewMonitor(exec, []string{"/hang", "/a"}, time.Minute, 20*time.Millisecond, services.WithStatFunc(stat))

			Expect(m.CheckNow(ctx)).To(Succeed())
			Eventually(func() int { return exec.Status().Discarded() }).Should(Equal(1))

			Expect(m.CheckNow(ctx)).To(Succeed())

			Expect(resultFor(m, "/hang").State).To(Equal(models.ProbeStateStuck))
			Eventually(func() models.ProbeState { return resultFor(m, "/a").State }).Should(Equal(models.ProbeStateOK))
			Eventually(func() int { return exec.Status().Active() }).Should(Equal(2))
		})

		It("should run periodically until stopped", func() {
			var probes atomic.Int32
			m := services.NewMonitor(exec, []string{"/a"}, 10*time.Millisecond, time.Second,
				services.WithStatFunc(func(string) error {
					probes.Add(1)
					return nil
				}))

			m.Start(ctx)
			Eventually(probes.Load).Should(BeNumerically(">=", 3))
			m.Stop()

			n := probes.Load()
			Consistently(probes.Load, 50*time.Millisecond).Should(BeNumerically("<=", n+1))
		})
	})

	Context("dispatch retry", func() {
		It("should retry while the queue is full", func() {
			d := &flakyDispatcher{reject: 2, err: srvErrors.NewTooManyTasksError(1)}
			m := services.NewMonitor(d, []string{"/a"}, time.Minute, time.Second,
				services.WithStatFunc(func(string) error { return nil }),
				services.WithDispatchBackOff(&backoff.ZeroBackOff{}, 5))

			Expect(m.CheckNow(ctx)).To(Succeed())

			Expect(d.calls.Load()).To(Equal(int32(3)))
			Expect(resultFor(m, "/a").State).To(Equal(models.ProbeStateOK))
		})

		It("should give up after the maximum number of tries", func() {
			d := &flakyDispatcher{reject: -1, err: srvErrors.NewTooManyTasksError(1)}
			m := services.NewMonitor(d, []string{"/a"}, time.Minute, time.Second,
				services.WithDispatchBackOff(&backoff.ZeroBackOff{}, 3))

			err := m.CheckNow(ctx)

			Expect(srvErrors.IsTooManyTasksError(err)).To(BeTrue())
			Expect(d.calls.Load()).To(Equal(int32(3)))
			Expect(resultFor(m, "/a").State).To(Equal(models.ProbeStateError))
		})

		It("should not retry a stopped executor", func() {
			d := &flakyDispatcher{reject: -1, err: srvErrors.NewNotRunningError("monitor")}
			m := services.NewMonitor(d, []string{"/a"}, time.Minute, time.Second,
				services.WithDispatchBackOff(&backoff.ZeroBackOff{}, 5))

			err := m.CheckNow(ctx)

			Expect(srvErrors.IsNotRunningError(err)).To(BeTrue())
			Expect(d.calls.Load()).To(Equal(int32(1)))
		})
	})
})
