package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"frontdesk/config"
	"frontdesk/handlers"
)

// RegisterSessionRoutes registers the dialogue session lifecycle endpoints.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/create_session", hb.CreateSessionHandler)
	r.POST("/update_session/:session_id", hb.UpdateSessionHandler)
	r.GET("/get_session/:session_id", hb.GetSessionHandler)
	r.POST("/end_session/:session_id", hb.EndSessionHandler)
}

// RegisterVoiceRoutes registers the speech-to-text entry point. It only goes
// live when Google credentials are configured; without them the route simply
// does not exist.
func RegisterVoiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if config.AppConfig.GoogleServiceAccountFile == "" {
		return
	}
	r.POST("/voice_session/:session_id", hb.VoiceSessionHandler)
}

// RegisterOpsRoutes registers the health and status endpoints.
func RegisterOpsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
	r.GET("/status", hb.StatusHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterSessionRoutes(r, hb)
	RegisterVoiceRoutes(r, hb)
	RegisterOpsRoutes(r, hb)
}
