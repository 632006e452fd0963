package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/kubev2v/executor-agent/api/v1"
	"github.com/kubev2v/executor-agent/pkg/client"
	"github.com/kubev2v/executor-agent/test/e2e/infra"
)

var _ = Describe("Executor agent", Ordered, func() {
	var (
		ctx     context.Context
		c       *client.Client
		dataDir string
	)

	status := func() *v1.ExecutorStatus {
		s, err := c.GetExecutorStatus(ctx)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	BeforeAll(func() {
		ctx = context.Background()

		var err error
		dataDir, err = os.MkdirTemp("", "executor-agent-e2e")
		Expect(err).NotTo(HaveOccurred())

		url, err := infraManager.StartAgent(infra.AgentConfig{
			HTTPPort:        cfg.HTTPPort,
			Workers:         2,
			MaxTasks:        3,
			MonitorPaths:    []string{dataDir},
			MonitorInterval: 200 * time.Millisecond,
			MonitorTimeout:  time.Second,
			DataFolder:      dataDir,
		})
		Expect(err).NotTo(HaveOccurred())

		c, err = client.NewClient(url)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		Expect(infraManager.StopAgent()).To(Succeed())
		_ = os.RemoveAll(dataDir)
	})

	// Given a freshly started agent
	// When we read its status
	// Then the pool runs at configured strength
	It("should start with a full pool", func() {
		s := status()

		Expect(s.Running).To(BeTrue())
		Expect(s.Configured).To(Equal(2))
		Expect(s.Active).To(Equal(2))
		Expect(s.Discarded).To(BeZero())
	})

	It("should probe the monitored path", func() {
		Eventually(func() string {
			probes, err := c.GetProbes(ctx)
			if err != nil || len(probes) == 0 {
				return ""
			}
			return probes[0].State
		}).WithTimeout(5 * time.Second).Should(Equal("ok"))
	})

	// Given a task that sleeps past its timeout
	// When it is dispatched
	// Then its worker is discarded and replaced
	It("should replace a worker stuck past its timeout", func() {
		Expect(c.CreateTask(ctx, v1.TaskRequest{Sleep: "2s", Timeout: "50ms"})).To(Succeed())

		Eventually(func() int { return status().Discarded }).Should(Equal(1))
		Eventually(func() int { return status().Active }).Should(Equal(2))

		Eventually(func() int { return status().Discarded }).WithTimeout(5 * time.Second).Should(BeZero())
	})

	It("should reject tasks when the queue is full", func() {
		var rejected error
		for range 10 {
			if err := c.CreateTask(ctx, v1.TaskRequest{Sleep: "500ms"}); err != nil {
				rejected = err
				break
			}
		}

		var apiErr *client.APIError
		Expect(errors.As(rejected, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusTooManyRequests))
	})

	It("should journal the discard", func() {
		Eventually(func() int {
			resp, err := c.ListEvents(ctx, v1.GetEventsParams{Kind: []string{"worker_discarded"}})
			if err != nil {
				return -1
			}
			return resp.Total
		}).Should(Equal(1))
	})

	// Given a journal persisted in the data folder
	// When the agent restarts
	// Then earlier events are still listed
	It("should keep the journal across restarts", func() {
		if cfg.InfraMode != "process" {
			Skip("restart needs a managed agent")
		}

		Expect(infraManager.RestartAgent()).To(Succeed())

		resp, err := c.ListEvents(ctx, v1.GetEventsParams{Kind: []string{"worker_discarded"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Total).To(Equal(1))
	})
})
