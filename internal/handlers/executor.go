package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/executor-agent/api/v1"
	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
)

const maxDiagnosticSleep = time.Hour

var errDiagnosticFailure = errors.New("diagnostic task failed on request")

// GetExecutor returns the executor status
// (GET /executor)
func (h *Handler) GetExecutor(c *gin.Context) {
	var status v1.ExecutorStatus
	status.FromModel(h.executor.Status())
	c.JSON(http.StatusOK, status)
}

// CreateTask dispatches a diagnostic task
// (POST /executor/tasks)
func (h *Handler) CreateTask(c *gin.Context) {
	var req v1.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	sleep, timeout, err := parseTaskRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fail := req.Fail
	err = h.executor.Dispatch(func() error {
		time.Sleep(sleep)
		if fail {
			return errDiagnosticFailure
		}
		return nil
	}, timeout)

	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, v1.TaskAccepted{Status: "accepted"})
	case srvErrors.IsTooManyTasksError(err):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case srvErrors.IsNotRunningError(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		zap.S().Named("executor_handler").Errorw("failed to dispatch task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to dispatch task"})
	}
}

func parseTaskRequest(req v1.TaskRequest) (sleep, timeout time.Duration, err error) {
	if req.Sleep != "" {
		sleep, err = time.ParseDuration(req.Sleep)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid sleep: %w", err)
		}
	}
	if sleep < 0 || sleep > maxDiagnosticSleep {
		return 0, 0, fmt.Errorf("sleep must be between 0 and %s", maxDiagnosticSleep)
	}

	if req.Timeout != "" {
		timeout, err = time.ParseDuration(req.Timeout)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid timeout: %w", err)
		}
		if timeout < 0 {
			return 0, 0, errors.New("timeout must not be negative")
		}
	}
	return sleep, timeout, nil
}
