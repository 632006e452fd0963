package config_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/executor-agent/internal/config"
)

var _ = Describe("Configuration", func() {
	Context("defaults", func() {
		It("should apply default values", func() {
			c := config.NewConfigurationWithDefaults()

			Expect(c.Server.HTTPPort).To(Equal(8000))
			Expect(c.Server.ServerMode).To(Equal("dev"))
			Expect(c.Executor.Name).To(Equal("agent"))
			Expect(c.Executor.Workers).To(Equal(4))
			Expect(c.Executor.MaxTasks).To(Equal(64))
			Expect(c.Monitor.Interval).To(Equal(30 * time.Second))
			Expect(c.Monitor.Timeout).To(Equal(5 * time.Second))
			Expect(c.Journal.Retention).To(Equal(168 * time.Hour))
			Expect(c.LogFormat).To(Equal("console"))
			Expect(c.LogLevel).To(Equal("info"))
		})

		It("should validate", func() {
			Expect(config.NewConfigurationWithDefaults().Validate()).To(Succeed())
		})
	})

	Context("Validate", func() {
		DescribeTable("should reject invalid values",
			func(mutate func(*config.Configuration), msg string) {
				c := config.NewConfigurationWithDefaults()
				mutate(c)

				err := c.Validate()

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(msg))
			},
			Entry("zero workers", func(c *config.Configuration) { c.Executor.Workers = 0 }, "workers"),
			Entry("zero max tasks", func(c *config.Configuration) { c.Executor.MaxTasks = 0 }, "max tasks"),
			Entry("empty name", func(c *config.Configuration) { c.Executor.Name = "" }, "name"),
			Entry("bad port", func(c *config.Configuration) { c.Server.HTTPPort = 70000 }, "http port"),
			Entry("bad mode", func(c *config.Configuration) { c.Server.ServerMode = "test" }, "server mode"),
			Entry("bad log format", func(c *config.Configuration) { c.LogFormat = "xml" }, "log format"),
			Entry("bad log level", func(c *config.Configuration) { c.LogLevel = "trace" }, "log level"),
			Entry("negative probe timeout", func(c *config.Configuration) { c.Monitor.Timeout = -time.Second }, "timeout"),
			Entry("paths without interval", func(c *config.Configuration) {
				c.Monitor.Paths = []string{"/mnt"}
				c.Monitor.Interval = 0
			}, "interval"),
		)

		It("should report every invalid field", func() {
			c := config.NewConfigurationWithDefaults()
			c.Executor.Workers = 0
			c.LogFormat = "xml"

			err := c.Validate()

			Expect(err.Error()).To(And(ContainSubstring("workers"), ContainSubstring("log format")))
		})
	})

	Context("DatabasePath", func() {
		It("should use memory without a data folder", func() {
			Expect(config.NewConfigurationWithDefaults().DatabasePath()).To(Equal(":memory:"))
		})

		It("should place the database in the data folder", func() {
			c := config.NewConfigurationWithDefaults()
			c.Store.DataFolder = "/var/lib/agent"

			Expect(c.DatabasePath()).To(Equal("/var/lib/agent/agent.duckdb"))
		})
	})

	It("should expose a debug map", func() {
		m := config.NewConfigurationWithDefaults().DebugMap()

		Expect(m).To(HaveKeyWithValue("executor.workers", 4))
		Expect(m).To(HaveKeyWithValue("monitor.interval", "30s"))
	})
})
