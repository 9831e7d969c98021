package repository

import (
	"github.com/Naenyn/FeedbackPortlet/internal/server"
)

type Repositories struct {
	Feedback *FeedbackRepository
}

func NewRepositories(s *server.Server) *Repositories {
	opts := StoreOptions{
		ConsistentCommentFilter: s.Config.Store.ConsistentCommentFilter,
	}
	if s.Config.Observability != nil {
		opts.SlowQueryThreshold = s.Config.Observability.Logging.SlowQueryThreshold
	}

	return &Repositories{
		Feedback: NewFeedbackRepository(s.DB.Pool, s.Logger, opts, s.Metrics),
	}
}
