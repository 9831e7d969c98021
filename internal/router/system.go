package router

import (
	"github.com/Naenyn/FeedbackPortlet/internal/handler"
	"github.com/Naenyn/FeedbackPortlet/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the operational endpoints. Feedback itself
// is reached through the service layer and the job queue, not over HTTP.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	r.GET("/status", h.Health.CheckHealth)
	r.GET("/metrics", h.Metrics.Serve())

	jobs := r.Group("/jobs", m.RateLimit.Limit(middleware.JobsRateLimit, middleware.JobsRateBurst))
	jobs.POST("/digest", h.Jobs.TriggerDigestRoute())
}
