package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Naenyn/FeedbackPortlet/internal/lib/job"
	"github.com/Naenyn/FeedbackPortlet/internal/server"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

// TaskEnqueuer is satisfied by *job.JobService.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type JobsHandler struct {
	Handler
	jobs TaskEnqueuer
}

func NewJobsHandler(s *server.Server, jobs TaskEnqueuer) *JobsHandler {
	return &JobsHandler{Handler: NewHandler(s), jobs: jobs}
}

type TriggerDigestRequest struct {
	job.DigestPayload
}

type TriggerDigestResponse struct {
	TaskID     string    `json:"task_id"`
	Queue      string    `json:"queue"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// TriggerDigest queues a digest now instead of waiting for the schedule.
func (h *JobsHandler) TriggerDigest(c echo.Context, req *TriggerDigestRequest) (*TriggerDigestResponse, error) {
	task, err := job.NewDigestTask(req.DigestPayload)
	if err != nil {
		return nil, err
	}

	info, err := h.jobs.Enqueue(c.Request().Context(), task)
	if err != nil {
		return nil, err
	}

	return &TriggerDigestResponse{
		TaskID:     info.ID,
		Queue:      info.Queue,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// TriggerDigestRoute is the routed form of TriggerDigest.
func (h *JobsHandler) TriggerDigestRoute() echo.HandlerFunc {
	return Handle(h.Handler, h.TriggerDigest, http.StatusAccepted, func() *TriggerDigestRequest {
		return &TriggerDigestRequest{}
	})
}
