package api

import (
	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/triage/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/triage/infrastructure/jwt"
)

// SetupRoutes configures all API routes. Health routes are registered by
// the server builder.
func SetupRoutes(router *gin.Engine, h *Handler) {
	if h.telemetry != nil {
		router.Use(h.telemetry.HTTP.Middleware())
		router.GET("/metrics", gin.WrapH(h.telemetry.Handler()))
	}

	api := router.Group("/api")
	{
		api.GET("/ping", h.Ping)
		api.POST("/login", h.Login)
		api.POST("/consent", h.Consent)
		api.POST("/message", h.Message)
		api.POST("/admin/login", h.AdminLogin)
	}

	// Transcripts are readable by their owner or an admin once tokens are on.
	var owner []gin.HandlerFunc
	if h.jwtSecret != "" {
		owner = append(owner, jwt.OwnerMiddleware(h.jwtSecret, "user_id", jwt.SubjectAdmin))
	}
	api.GET("/users/:user_id/messages", append(owner, h.Messages)...)
	api.GET("/trend/:user_id", append(owner, h.Trend)...)

	if h.jwtSecret != "" {
		admin := infragin.ProtectedGroup(api, "/admin", h.jwtSecret, jwt.SubjectAdmin)
		admin.GET("/alerts", h.Alerts)
	}
}
