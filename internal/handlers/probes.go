package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/executor-agent/api/v1"
)

// GetProbes returns the last result of every monitored path
// (GET /probes)
func (h *Handler) GetProbes(c *gin.Context) {
	resp := v1.ProbeListResponse{Probes: []v1.Probe{}}
	if h.monitor != nil {
		for _, r := range h.monitor.Results() {
			resp.Probes = append(resp.Probes, v1.NewProbeFromModel(r))
		}
	}
	c.JSON(http.StatusOK, resp)
}
