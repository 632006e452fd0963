package services_test

import (
	"context"
	"database/sql"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/executor-agent/internal/models"
	"github.com/kubev2v/executor-agent/internal/services"
	"github.com/kubev2v/executor-agent/internal/store"
	"github.com/kubev2v/executor-agent/internal/store/migrations"
	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
	"github.com/kubev2v/executor-agent/pkg/executor"
	"github.com/kubev2v/executor-agent/pkg/scheduler"
)

var _ = Describe("Journal", func() {
	var (
		ctx     context.Context
		db      *sql.DB
		s       *store.Store
		journal *services.Journal
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())

		s = store.NewStore(db)
		journal = services.NewJournal(s.Events(), 16)
	})

	AfterEach(func() {
		journal.Close()
		if db != nil {
			db.Close()
		}
	})

	Context("recording", func() {
		// Given a journal over an empty store
		// When worker events are reported and the journal is closed
		// Then every event is persisted
		It("should persist worker lifecycle events on close", func() {
			journal.WorkerStarted("probe", "probe/1")
			journal.WorkerStarted("probe", "probe/2")
			journal.WorkerStopped("probe", "probe/1")

			journal.Close()

			count, err := s.Events().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(3))
		})

		It("should record task failures only", func() {
			task := &executor.Task{Timeout: time.Second}

			journal.TaskFinished("probe", task, time.Millisecond, nil)
			journal.TaskFinished("probe", task, time.Millisecond, errors.New("boom"))
			journal.Close()

			events, err := s.Events().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Kind).To(Equal(models.EventTaskFailed))
			Expect(events[0].Message).To(Equal("boom"))
			Expect(events[0].TaskID).To(Equal(task.ID.String()))
		})

		It("should record the discarded task", func() {
			task := &executor.Task{Timeout: 10 * time.Millisecond}

			journal.WorkerDiscarded("probe", "probe/2", task)
			journal.Close()

			events, err := s.Events().List(ctx, store.ByKinds(models.EventWorkerDiscarded))
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Worker).To(Equal("probe/2"))
			Expect(events[0].Message).To(Equal(task.String()))
		})

		It("should record rejections", func() {
			journal.TaskRejected("probe", srvErrors.NewTooManyTasksError(4))
			journal.Close()

			events, err := s.Events().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Kind).To(Equal(models.EventTaskRejected))
			Expect(events[0].Message).To(ContainSubstring("capacity 4"))
		})

		It("should ignore events after close", func() {
			journal.Close()
			journal.WorkerStarted("probe", "probe/1")
			journal.Close()

			count, err := s.Events().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Context("as executor observer", func() {
		// Given an executor observed by the journal
		// When a task exceeds its timeout
		// Then the discard and the replacement worker are journaled
		It("should journal a discard and its replacement", func() {
			sched := scheduler.New()
			defer sched.Close()

			exec := executor.New("probe", 1, 4, sched, executor.WithObserver(journal))
			Expect(exec.Start()).To(Succeed())

			release := make(chan struct{})
			Expect(exec.Dispatch(func() error {
				<-release
				return nil
			}, 10*time.Millisecond)).To(Succeed())

			Eventually(func() int { return exec.Status().Discarded() }).Should(Equal(1))
			close(release)
			exec.Stop(true)
			journal.Close()

			discarded, err := s.Events().Count(ctx, store.ByKinds(models.EventWorkerDiscarded))
			Expect(err).NotTo(HaveOccurred())
			Expect(discarded).To(Equal(1))

			started, err := s.Events().Count(ctx, store.ByKinds(models.EventWorkerStarted))
			Expect(err).NotTo(HaveOccurred())
			Expect(started).To(Equal(2))

			stopped, err := s.Events().Count(ctx, store.ByKinds(models.EventWorkerStopped))
			Expect(err).NotTo(HaveOccurred())
			Expect(stopped).To(Equal(2))
		})
	})

	Context("List", func() {
		BeforeEach(func() {
			for _, w := range []string{"probe/1", "probe/2", "probe/3"} {
				journal.WorkerStarted("probe", w)
			}
			journal.WorkerStopped("probe", "probe/1")
			journal.Close()
		})

		It("should return the total with a limited page", func() {
			result, err := journal.List(ctx, services.JournalListParams{Limit: 2})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Total).To(Equal(4))
			Expect(result.Events).To(HaveLen(2))
		})

		It("should filter by kind and worker", func() {
			result, err := journal.List(ctx, services.JournalListParams{
				Kinds:  []models.EventKind{models.EventWorkerStarted},
				Worker: "probe/1",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Total).To(Equal(1))
			Expect(result.Events).To(HaveLen(1))
			Expect(result.Events[0].Kind).To(Equal(models.EventWorkerStarted))
		})
	})
})
