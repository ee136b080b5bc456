package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"frontdesk/services/pipeline"
	"frontdesk/services/session"
	"frontdesk/utils"
)

// StatusHandler surfaces pipeline metrics for operators.
type StatusHandler struct {
	Orchestrator *pipeline.Orchestrator
	Sessions     *session.Controller
}

func NewStatusHandler(orchestrator *pipeline.Orchestrator, sessions *session.Controller) *StatusHandler {
	return &StatusHandler{
		Orchestrator: orchestrator,
		Sessions:     sessions,
	}
}

// PipelineStatusHandler reports turn counters, the last turn's timings, the
// composer pool size and the booking volume in one snapshot.
func (h *StatusHandler) PipelineStatusHandler(c *gin.Context) {
	snapshot := h.Orchestrator.Metrics().Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"pipeline":         snapshot,
		"composer_workers": h.Orchestrator.Composer().Workers(),
		"appointments":     h.Orchestrator.Appointments().Count(),
		"active_sessions":  h.Sessions.ActiveCount(),
		"backends":         utils.GetHealthStatus(),
	})
}
