package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Naenyn/FeedbackPortlet/internal/middleware"
	"github.com/Naenyn/FeedbackPortlet/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

// HealthHandler reports whether the service and its dependencies respond.
type HealthHandler struct {
	Handler
	checks []healthCheck
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	var db Pinger
	if s.DB != nil {
		db = s.DB.Pool
	}
	return newHealthHandler(s, db, s.Redis)
}

func newHealthHandler(s *server.Server, db Pinger, rdb *redis.Client) *HealthHandler {
	h := &HealthHandler{Handler: NewHandler(s)}
	obs := s.Config.Observability

	if db != nil && obs.ShouldCheck("database") {
		h.checks = append(h.checks, healthCheck{name: "database", ping: db.Ping})
	}
	if rdb != nil && obs.ShouldCheck("redis") {
		h.checks = append(h.checks, healthCheck{name: "redis", ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return h
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth answers 200 when every configured dependency responds and 503
// otherwise. Failures are also recorded as New Relic custom events.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   start.UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]checkResult, len(h.checks)),
	}

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.server.Config.Observability.HealthCheckTimeout())
		checkStart := time.Now()
		err := check.ping(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err != nil {
			response.Status = "unhealthy"
			response.Checks[check.name] = checkResult{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}

			logger.Error().Err(err).Str("check", check.name).Dur("response_time", elapsed).Msg("health check failed")
			h.recordFailure(map[string]any{
				"check_type":       check.name,
				"operation":        "health_check",
				"error_type":       check.name + "_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
			continue
		}

		response.Checks[check.name] = checkResult{Status: "healthy", ResponseTime: elapsed.String()}
		logger.Debug().Str("check", check.name).Dur("response_time", elapsed).Msg("health check passed")
	}

	if response.Status != "healthy" {
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("service unhealthy")
		h.recordFailure(map[string]any{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(attrs map[string]any) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}
