// Package job runs the feedback background tasks on Asynq: asynchronous
// submission storage and the periodic digest.
package job

import (
	"context"
	"fmt"

	"github.com/Naenyn/FeedbackPortlet/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type JobService struct {
	Client *asynq.Client

	server    *asynq.Server
	scheduler *asynq.Scheduler
	reports   *config.ReportsConfig
	logger    *zerolog.Logger
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6, // submissions
				"default":  3,
				"low":      1, // digests
			},
		},
	)

	js := &JobService{
		Client:  client,
		server:  server,
		reports: cfg.Reports,
		logger:  logger,
	}

	if cfg.Reports != nil && cfg.Reports.DigestEnabled {
		js.scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	}

	return js
}

// Enqueue submits a task for background processing.
func (j *JobService) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	info, err := j.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return info, nil
}

// Start registers h and starts the worker server, plus the digest
// scheduler when the digest is enabled.
func (j *JobService) Start(h *Handlers) error {
	mux := asynq.NewServeMux()
	h.Register(mux)

	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(mux); err != nil {
		return err
	}

	if j.scheduler == nil {
		return nil
	}

	task, err := NewDigestTask(DigestPayload{})
	if err != nil {
		return err
	}
	entryID, err := j.scheduler.Register(j.reports.DigestCron, task)
	if err != nil {
		return fmt.Errorf("register digest schedule %q: %w", j.reports.DigestCron, err)
	}
	if err := j.scheduler.Start(); err != nil {
		return fmt.Errorf("start digest scheduler: %w", err)
	}

	j.logger.Info().
		Str("cron", j.reports.DigestCron).
		Str("entry_id", entryID).
		Msg("Scheduled feedback digest")

	return nil
}

func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	if j.scheduler != nil {
		j.scheduler.Shutdown()
	}
	j.server.Shutdown()
	j.Client.Close()
}
