package handlers

import (
	"frontdesk/services/session"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	Sessions *session.Controller

	// Session endpoints
	CreateSessionHandler gin.HandlerFunc
	UpdateSessionHandler gin.HandlerFunc
	GetSessionHandler    gin.HandlerFunc
	EndSessionHandler    gin.HandlerFunc

	// Voice endpoints
	VoiceSessionHandler gin.HandlerFunc

	// Operational endpoints
	HealthHandler gin.HandlerFunc
	StatusHandler gin.HandlerFunc
}
