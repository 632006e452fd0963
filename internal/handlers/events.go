package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/executor-agent/api/v1"
	"github.com/kubev2v/executor-agent/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetEvents returns the executor journal with filtering and pagination
// (GET /events)
func (h *Handler) GetEvents(c *gin.Context, params v1.GetEventsParams) {
	kinds, err := v1.ParseEventKinds(params.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page := 1
	if params.Page > 0 {
		page = params.Page
	}
	pageSize := defaultPageSize
	if params.PageSize > 0 {
		pageSize = min(params.PageSize, maxPageSize)
	}

	result, err := h.journal.List(c.Request.Context(), services.JournalListParams{
		Kinds:  kinds,
		Worker: params.Worker,
		Limit:  uint64(pageSize),
		Offset: uint64((page - 1) * pageSize),
	})
	if err != nil {
		zap.S().Named("events_handler").Errorw("failed to list events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}

	pageCount := (result.Total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	events := make([]v1.Event, 0, len(result.Events))
	for _, e := range result.Events {
		events = append(events, v1.NewEventFromModel(e))
	}

	c.JSON(http.StatusOK, v1.EventListResponse{
		Events:    events,
		Page:      page,
		PageCount: pageCount,
		Total:     result.Total,
	})
}
