package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/kubev2v/executor-agent/api/v1"
	"github.com/kubev2v/executor-agent/internal/handlers"
	"github.com/kubev2v/executor-agent/internal/services"
	"github.com/kubev2v/executor-agent/internal/store"
	"github.com/kubev2v/executor-agent/internal/store/migrations"
	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
	"github.com/kubev2v/executor-agent/pkg/executor"
)

type fakeExecutor struct {
	mu       sync.Mutex
	status   executor.Status
	err      error
	timeouts []time.Duration
	fns      []executor.Callable
}

func (f *fakeExecutor) Status() executor.Status {
	return f.status
}

func (f *fakeExecutor) Dispatch(fn executor.Callable, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.fns = append(f.fns, fn)
	f.timeouts = append(f.timeouts, timeout)
	return nil
}

var _ = Describe("Handler", func() {
	var (
		ctx     context.Context
		db      *sql.DB
		s       *store.Store
		journal *services.Journal
		exec    *fakeExecutor
		router  *gin.Engine
	)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	setup := func(monitor *services.Monitor) {
		router = gin.New()
		v1.RegisterHandlers(router.Group("/api/v1"), handlers.New(exec, journal, monitor))
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		s = store.NewStore(db)
		journal = services.NewJournal(s.Events(), 16)

		exec = &fakeExecutor{}
		setup(nil)
	})

	AfterEach(func() {
		journal.Close()
		db.Close()
	})

	Context("GetExecutor", func() {
		It("should return the pool snapshot", func() {
			exec.status = executor.Status{
				Name:       "agent",
				Running:    true,
				Configured: 2,
				Queued:     1,
				Capacity:   8,
				Workers: []executor.WorkerStatus{
					{Name: "agent/1", Task: "<Task id=x timeout=1s>", Discarded: true},
					{Name: "agent/2"},
					{Name: "agent/3"},
				},
			}

			w := do(http.MethodGet, "/api/v1/executor", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var status v1.ExecutorStatus
			Expect(json.Unmarshal(w.Body.Bytes(), &status)).To(Succeed())
			Expect(status.Name).To(Equal("agent"))
			Expect(status.Active).To(Equal(2))
			Expect(status.Discarded).To(Equal(1))
			Expect(status.Workers).To(HaveLen(3))
			Expect(status.Workers[0].State).To(Equal(v1.WorkerStateRunning))
			Expect(*status.Workers[0].Task).To(Equal("<Task id=x timeout=1s>"))
			Expect(status.Workers[1].State).To(Equal(v1.WorkerStateWaiting))
			Expect(status.Workers[1].Task).To(BeNil())
		})
	})

	Context("CreateTask", func() {
		It("should accept a diagnostic task", func() {
			w := do(http.MethodPost, "/api/v1/executor/tasks", v1.TaskRequest{Sleep: "1ms", Timeout: "2s", Fail: true})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(exec.timeouts).To(Equal([]time.Duration{2 * time.Second}))
			Expect(exec.fns[0]()).To(MatchError(ContainSubstring("diagnostic task failed")))
		})

		It("should dispatch without deadline when timeout is omitted", func() {
			w := do(http.MethodPost, "/api/v1/executor/tasks", v1.TaskRequest{Sleep: "1ms"})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(exec.timeouts).To(Equal([]time.Duration{0}))
			Expect(exec.fns[0]()).To(Succeed())
		})

		DescribeTable("should map dispatch errors",
			func(err error, code int) {
				exec.err = err

				w := do(http.MethodPost, "/api/v1/executor/tasks", v1.TaskRequest{Sleep: "1ms"})

				Expect(w.Code).To(Equal(code))
			},
			Entry("queue full", srvErrors.NewTooManyTasksError(4), http.StatusTooManyRequests),
			Entry("not running", srvErrors.NewNotRunningError("agent"), http.StatusServiceUnavailable),
			Entry("unexpected", errors.New("boom"), http.StatusInternalServerError),
		)

		DescribeTable("should reject invalid requests",
			func(req v1.TaskRequest) {
				w := do(http.MethodPost, "/api/v1/executor/tasks", req)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(exec.fns).To(BeEmpty())
			},
			Entry("bad sleep", v1.TaskRequest{Sleep: "soon"}),
			Entry("negative sleep", v1.TaskRequest{Sleep: "-1s"}),
			Entry("sleep too long", v1.TaskRequest{Sleep: "2h"}),
			Entry("bad timeout", v1.TaskRequest{Sleep: "1ms", Timeout: "later"}),
			Entry("negative timeout", v1.TaskRequest{Sleep: "1ms", Timeout: "-1s"}),
		)

		It("should reject a missing body", func() {
			w := do(http.MethodPost, "/api/v1/executor/tasks", nil)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("GetEvents", func() {
		BeforeEach(func() {
			journal.WorkerStarted("agent", "agent/1")
			journal.WorkerStarted("agent", "agent/2")
			journal.WorkerDiscarded("agent", "agent/1", &executor.Task{Timeout: time.Second})
			journal.Close()
		})

		It("should list all events", func() {
			w := do(http.MethodGet, "/api/v1/events", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp v1.EventListResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Total).To(Equal(3))
			Expect(resp.Events).To(HaveLen(3))
			Expect(resp.Page).To(Equal(1))
			Expect(resp.PageCount).To(Equal(1))
		})

		It("should filter by kind and worker", func() {
			w := do(http.MethodGet, "/api/v1/events?kind=worker_discarded&worker=agent/1", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp v1.EventListResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Total).To(Equal(1))
			Expect(resp.Events[0].Kind).To(Equal("worker_discarded"))
		})

		It("should paginate", func() {
			w := do(http.MethodGet, "/api/v1/events?page=2&pageSize=2", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp v1.EventListResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Events).To(HaveLen(1))
			Expect(resp.PageCount).To(Equal(2))
		})

		It("should reject an unknown kind", func() {
			w := do(http.MethodGet, "/api/v1/events?kind=exploded", nil)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a malformed page", func() {
			w := do(http.MethodGet, "/api/v1/events?page=first", nil)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("GetProbes", func() {
		It("should return an empty list without a monitor", func() {
			w := do(http.MethodGet, "/api/v1/probes", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"probes":[]}`))
		})

		It("should return monitor results", func() {
			inline := &inlineDispatcher{}
			monitor := services.NewMonitor(inline, []string{"/data", "/pending"}, time.Minute, time.Second,
				services.WithStatFunc(func(path string) error {
					if path == "/pending" {
						return errors.New("permission denied")
					}
					return nil
				}))
			Expect(monitor.CheckNow(ctx)).To(Succeed())
			setup(monitor)

			w := do(http.MethodGet, "/api/v1/probes", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp v1.ProbeListResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Probes).To(HaveLen(2))
			Expect(resp.Probes[0].Path).To(Equal("/data"))
			Expect(resp.Probes[0].State).To(Equal("ok"))
			Expect(resp.Probes[0].Error).To(BeNil())
			Expect(resp.Probes[1].State).To(Equal("error"))
			Expect(*resp.Probes[1].Error).To(Equal("permission denied"))
		})
	})
})

type inlineDispatcher struct{}

func (inlineDispatcher) Dispatch(fn executor.Callable, _ time.Duration) error {
	_ = fn()
	return nil
}
