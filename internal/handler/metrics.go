package handler

import (
	"github.com/Naenyn/FeedbackPortlet/internal/server"
	"github.com/labstack/echo/v4"
)

type MetricsHandler struct {
	Handler
}

func NewMetricsHandler(s *server.Server) *MetricsHandler {
	return &MetricsHandler{Handler: NewHandler(s)}
}

// Serve exposes the Prometheus registry.
func (h *MetricsHandler) Serve() echo.HandlerFunc {
	return echo.WrapHandler(h.server.Metrics.Handler())
}
