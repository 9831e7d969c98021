package handler

import (
	"github.com/Naenyn/FeedbackPortlet/internal/server"
	"github.com/Naenyn/FeedbackPortlet/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	Metrics *MetricsHandler
	Jobs    *JobsHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		Metrics: NewMetricsHandler(s),
		Jobs:    NewJobsHandler(s, services.Job),
	}
}
