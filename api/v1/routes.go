package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /executor)
	GetExecutor(c *gin.Context)
	// (POST /executor/tasks)
	CreateTask(c *gin.Context)
	// (GET /events)
	GetEvents(c *gin.Context, params GetEventsParams)
	// (GET /probes)
	GetProbes(c *gin.Context)
}

type serverWrapper struct {
	handler ServerInterface
}

func (w *serverWrapper) GetEvents(c *gin.Context) {
	var params GetEventsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters: " + err.Error()})
		return
	}
	w.handler.GetEvents(c, params)
}

// RegisterHandlers adds each server route to the router.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	wrapper := &serverWrapper{handler: si}

	router.GET("/executor", si.GetExecutor)
	router.POST("/executor/tasks", si.CreateTask)
	router.GET("/events", wrapper.GetEvents)
	router.GET("/probes", si.GetProbes)
}
