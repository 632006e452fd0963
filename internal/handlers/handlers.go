package handlers

import (
	"time"

	"github.com/kubev2v/executor-agent/internal/services"
	"github.com/kubev2v/executor-agent/pkg/executor"
)

type Executor interface {
	Status() executor.Status
	Dispatch(fn executor.Callable, timeout time.Duration) error
}

type Handler struct {
	executor Executor
	journal  *services.Journal
	monitor  *services.Monitor
}

// New builds the API handler. monitor may be nil when no paths are monitored.
func New(exec Executor, journal *services.Journal, monitor *services.Monitor) *Handler {
	return &Handler{
		executor: exec,
		journal:  journal,
		monitor:  monitor,
	}
}
