package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"frontdesk/models"
	"frontdesk/services/session"
	"frontdesk/utils"
)

// SessionHandler exposes the dialogue session lifecycle over HTTP.
type SessionHandler struct {
	Sessions *session.Controller
	Logger   *zap.Logger
}

func NewSessionHandler(sessions *session.Controller, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		Sessions: sessions,
		Logger:   logger,
	}
}

// CreateSessionHandler opens a new dialogue session. The id comes from the
// X-Session-ID header so callers keep control over their own identifiers.
func (h *SessionHandler) CreateSessionHandler(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader("X-Session-ID"))

	envelope, err := h.Sessions.Create(c.Request.Context(), id)
	if err != nil {
		switch err {
		case session.ErrEmptySessionID:
			utils.JSONDetail(c, http.StatusBadRequest, "Session_id must not be an empty string")
		case session.ErrSessionExists:
			utils.JSONDetail(c, http.StatusConflict, fmt.Sprintf("Session with ID %s already exists", id))
		default:
			utils.JSONDetail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.Logger.Info("session created", zap.String("sessionID", id))
	c.JSON(http.StatusOK, envelope)
}

// UpdateSessionHandler runs one dialogue turn against the caller's sentence.
func (h *SessionHandler) UpdateSessionHandler(c *gin.Context) {
	id := c.Param("session_id")

	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		utils.JSONDetail(c, http.StatusBadRequest, "Request body is empty")
		return
	}

	var input models.DialogueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONDetail(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	envelope, err := h.Sessions.Update(c.Request.Context(), id, input.Sentence)
	if err != nil {
		if err == session.ErrSessionNotFound {
			utils.JSONDetail(c, http.StatusNotFound, "Session not found")
			return
		}
		utils.JSONDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// GetSessionHandler returns the current envelope without advancing the dialogue.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	id := c.Param("session_id")

	envelope, err := h.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		if err == session.ErrSessionNotFound {
			utils.JSONDetail(c, http.StatusNotFound, "Session not found")
			return
		}
		utils.JSONDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// EndSessionHandler closes the session and releases its state.
func (h *SessionHandler) EndSessionHandler(c *gin.Context) {
	id := c.Param("session_id")

	envelope, err := h.Sessions.End(c.Request.Context(), id)
	if err != nil {
		if err == session.ErrSessionNotFound {
			utils.JSONDetail(c, http.StatusNotFound, "Session not found")
			return
		}
		utils.JSONDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.Logger.Info("session ended", zap.String("sessionID", id))
	c.JSON(http.StatusOK, envelope)
}

// HealthHandler reports liveness plus the current session count.
func (h *SessionHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "Healthy",
		"message":         "Multi AI Agent System is operational",
		"active_sessions": h.Sessions.ActiveCount(),
	})
}
