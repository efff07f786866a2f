package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/middleware"
)

// Routes bundles what RegisterRoutes mounts.
type Routes struct {
	Prefix    string
	APIKey    string
	Cookie    middleware.CookieOptions
	Sessions  middleware.SessionAuthenticator
	Students  *StudentHandler
	Therapist *TherapistHandler
	Metrics   *MetricsHandler
	Logger    *zap.Logger
}

// RegisterRoutes mounts the public, student and therapist endpoints on r.
func RegisterRoutes(r *gin.Engine, routes Routes) {
	if routes.Metrics != nil {
		r.GET("/health", routes.Metrics.Health)
		r.GET("/ready", routes.Metrics.Ready)
		r.GET("/metrics", routes.Metrics.Prometheus)
	}

	api := r.Group(routes.Prefix)
	api.Use(middleware.WithResponseMeta())

	if routes.Students != nil {
		students := api.Group("")
		students.Use(middleware.APIKey(routes.APIKey))
		students.POST("/students/validate", routes.Students.Validate)
		students.POST("/analyze", routes.Students.Analyze)
		students.POST("/extra-credit", routes.Students.ExtraCredit)
	}

	if routes.Therapist != nil {
		therapist := api.Group("/therapist")
		therapist.POST("/login", routes.Therapist.Login)
		therapist.POST("/logout", routes.Therapist.Logout)

		secured := therapist.Group("")
		secured.Use(middleware.Session(routes.Sessions, routes.Cookie))
		secured.GET("/dashboard", routes.Therapist.Dashboard)
		secured.GET("/history/export", middleware.Audit(routes.Logger, "history.export"), routes.Therapist.ExportHistory)
		secured.GET("/alerts/download/:token", middleware.Audit(routes.Logger, "alert.download"), routes.Therapist.DownloadAlert)
	}
}
