package service

import (
	"github.com/Naenyn/FeedbackPortlet/internal/lib/job"
	"github.com/Naenyn/FeedbackPortlet/internal/repository"
	"github.com/Naenyn/FeedbackPortlet/internal/server"
)

type Services struct {
	Feedback *FeedbackService
	Job      *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Feedback: NewFeedbackService(repos.Feedback, s.Logger),
		Job:      s.Job,
	}, nil
}
