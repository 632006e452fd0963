package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	v1 "github.com/kubev2v/executor-agent/api/v1"
	"github.com/kubev2v/executor-agent/internal/config"
	"github.com/kubev2v/executor-agent/internal/handlers"
	"github.com/kubev2v/executor-agent/internal/metrics"
	"github.com/kubev2v/executor-agent/internal/server"
	"github.com/kubev2v/executor-agent/internal/services"
	"github.com/kubev2v/executor-agent/internal/store"
	"github.com/kubev2v/executor-agent/internal/store/migrations"
	"github.com/kubev2v/executor-agent/pkg/executor"
	"github.com/kubev2v/executor-agent/pkg/scheduler"
)

const (
	shutdownTimeout = 10 * time.Second
	drainTimeout    = 30 * time.Second
)

func NewRunCommand() *cobra.Command {
	cfg := config.NewConfigurationWithDefaults()
	var configFile string

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the executor agent",
		PreRunE: syncFlags(&configFile),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := newLogger(cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			undo := zap.ReplaceGlobals(logger)
			defer undo()

			zap.S().Infow("configuration loaded", "config", cfg.DebugMap())

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return run(ctx, cfg)
		},
	}

	registerFlags(cmd, cfg, &configFile)
	return cmd
}

func registerFlags(cmd *cobra.Command, cfg *config.Configuration, configFile *string) {
	f := cmd.Flags()
	f.StringVar(configFile, "config", "", "Path to a config file (yaml, json or toml)")

	f.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode: dev or prod")
	f.IntVar(&cfg.Server.HTTPPort, "http-port", cfg.Server.HTTPPort, "HTTP listen port")

	f.StringVar(&cfg.Executor.Name, "executor-name", cfg.Executor.Name, "Executor name, prefix of worker names")
	f.IntVar(&cfg.Executor.Workers, "workers", cfg.Executor.Workers, "Number of live workers")
	f.IntVar(&cfg.Executor.MaxTasks, "max-tasks", cfg.Executor.MaxTasks, "Task queue capacity")

	f.StringSliceVar(&cfg.Monitor.Paths, "monitor-path", cfg.Monitor.Paths, "Path to check periodically (repeatable)")
	f.DurationVar(&cfg.Monitor.Interval, "monitor-interval", cfg.Monitor.Interval, "Time between check rounds")
	f.DurationVar(&cfg.Monitor.Timeout, "monitor-timeout", cfg.Monitor.Timeout, "Timeout of one path check")

	f.StringVar(&cfg.Store.DataFolder, "data-folder", cfg.Store.DataFolder, "Folder of the DuckDB file; empty for in-memory")
	f.IntVar(&cfg.Journal.Buffer, "journal-buffer", cfg.Journal.Buffer, "Journal event buffer size")
	f.DurationVar(&cfg.Journal.Retention, "journal-retention", cfg.Journal.Retention, "Journal retention; 0 keeps everything")

	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
}

func run(ctx context.Context, cfg *config.Configuration) error {
	log := zap.S().Named("agent")

	if cfg.Store.DataFolder != "" {
		if err := os.MkdirAll(cfg.Store.DataFolder, 0o750); err != nil {
			return fmt.Errorf("failed to create data folder: %w", err)
		}
	}

	db, err := store.NewDB(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	s := store.NewStore(db)
	defer func() { _ = s.Close() }()

	if cfg.Journal.Retention > 0 {
		deleted, err := s.Events().DeleteBefore(ctx, time.Now().Add(-cfg.Journal.Retention))
		if err != nil {
			return fmt.Errorf("failed to prune journal: %w", err)
		}
		log.Infow("journal pruned", "deleted", deleted, "retention", cfg.Journal.Retention)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	exporter, err := metrics.NewExporter(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	journal := services.NewJournal(s.Events(), cfg.Journal.Buffer)
	defer journal.Close()

	sched := scheduler.New()
	defer sched.Close()

	exec := executor.New(
		cfg.Executor.Name,
		cfg.Executor.Workers,
		cfg.Executor.MaxTasks,
		sched,
		executor.WithLogger(zap.L()),
		executor.WithObserver(executor.Observers(exporter, journal)),
	)
	if err := exec.Start(); err != nil {
		return err
	}
	defer stopExecutor(exec)

	var monitor *services.Monitor
	if len(cfg.Monitor.Paths) > 0 {
		monitor = services.NewMonitor(exec, cfg.Monitor.Paths, cfg.Monitor.Interval, cfg.Monitor.Timeout)
	}

	h := handlers.New(exec, journal, monitor)
	srv := server.NewServer(cfg, reg, func(router *gin.RouterGroup) {
		v1.RegisterHandlers(router, h)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	if monitor != nil {
		monitor.Start(gctx)
		defer monitor.Stop()
	}

	log.Infow("agent started", "executor", exec.Name(), "workers", cfg.Executor.Workers)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("agent stopping")
	return nil
}

// stopExecutor stops the pool and waits for its workers. Discarded workers
// may stay blocked forever, so the wait is bounded.
func stopExecutor(exec *executor.Executor) {
	done := make(chan struct{})
	go func() {
		exec.Stop(true)
		close(done)
	}()

	select {
	case <-done:
		zap.S().Named("agent").Info("executor stopped")
	case <-time.After(drainTimeout):
		zap.S().Named("agent").Warnw("executor workers still running after drain timeout", "status", exec.Status())
	}
}
