package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Naenyn/FeedbackPortlet/internal/config"
	"github.com/Naenyn/FeedbackPortlet/internal/metrics"
	"github.com/Naenyn/FeedbackPortlet/internal/model"
	"github.com/Naenyn/FeedbackPortlet/internal/sqlerr"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type FeedbackStorer interface {
	StoreFeedback(ctx context.Context, item *model.FeedbackItem) error
}

type DigestBuilder interface {
	BuildDigest(ctx context.Context, window time.Duration) (*model.Digest, error)
}

type DigestMailer interface {
	SendDigestEmail(ctx context.Context, to []string, digest *model.Digest) error
}

// Handlers processes the feedback tasks.
type Handlers struct {
	feedback FeedbackStorer
	digests  DigestBuilder
	mailer   DigestMailer
	reports  config.ReportsConfig
	logger   *zerolog.Logger
	metrics  *metrics.Metrics
}

func NewHandlers(feedback FeedbackStorer, digests DigestBuilder, mailer DigestMailer, reports *config.ReportsConfig, logger *zerolog.Logger, m *metrics.Metrics) *Handlers {
	if reports == nil {
		reports = config.DefaultReportsConfig()
	}
	return &Handlers{
		feedback: feedback,
		digests:  digests,
		mailer:   mailer,
		reports:  *reports,
		logger:   logger,
		metrics:  m,
	}
}

// Register routes the feedback task types on mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskStoreFeedback, h.HandleStoreFeedback)
	mux.HandleFunc(TaskDigest, h.HandleDigest)
}

// HandleStoreFeedback persists one submission. Malformed or invalid
// payloads are dropped without retry.
func (h *Handlers) HandleStoreFeedback(ctx context.Context, t *asynq.Task) error {
	var p StoreFeedbackPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.metrics.ObserveJob(TaskStoreFeedback, metrics.OutcomeSkipped)
		return fmt.Errorf("failed to unmarshal store feedback payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := p.Validate(); err != nil {
		h.metrics.ObserveJob(TaskStoreFeedback, metrics.OutcomeSkipped)
		h.logger.Warn().Err(err).Str("type", TaskStoreFeedback).Msg("Dropping invalid feedback payload")
		return fmt.Errorf("invalid store feedback payload: %v: %w", err, asynq.SkipRetry)
	}

	item := p.Item()
	if err := h.feedback.StoreFeedback(ctx, item); err != nil {
		if errors.Is(err, sqlerr.ErrNotFound) {
			h.metrics.ObserveJob(TaskStoreFeedback, metrics.OutcomeSkipped)
			h.logger.Warn().
				Err(err).
				Str("type", TaskStoreFeedback).
				Int64("feedback_id", p.ID).
				Msg("Dropping update of unknown feedback")
			return fmt.Errorf("store feedback: %w: %w", err, asynq.SkipRetry)
		}
		h.metrics.ObserveJob(TaskStoreFeedback, metrics.OutcomeError)
		h.logger.Error().
			Err(err).
			Str("type", TaskStoreFeedback).
			Str("user_id", p.UserID).
			Msg("Failed to store feedback")
		return err
	}

	h.metrics.ObserveJob(TaskStoreFeedback, metrics.OutcomeSuccess)
	h.logger.Info().
		Str("type", TaskStoreFeedback).
		Stringer("feedback_id", item.ID).
		Msg("Stored feedback")
	return nil
}

// HandleDigest builds the digest for the requested window and mails it.
func (h *Handlers) HandleDigest(ctx context.Context, t *asynq.Task) error {
	var p DigestPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			h.metrics.ObserveJob(TaskDigest, metrics.OutcomeSkipped)
			return fmt.Errorf("failed to unmarshal digest payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if err := p.Validate(); err != nil {
		h.metrics.ObserveJob(TaskDigest, metrics.OutcomeSkipped)
		return fmt.Errorf("invalid digest payload: %v: %w", err, asynq.SkipRetry)
	}

	window := h.reports.DigestWindow
	if p.WindowHours > 0 {
		window = time.Duration(p.WindowHours) * time.Hour
	}
	recipients := h.reports.Recipients
	if len(p.Recipients) > 0 {
		recipients = p.Recipients
	}

	if len(recipients) == 0 {
		h.metrics.ObserveJob(TaskDigest, metrics.OutcomeSkipped)
		h.logger.Warn().Str("type", TaskDigest).Msg("No digest recipients configured, skipping")
		return nil
	}

	digest, err := h.digests.BuildDigest(ctx, window)
	if err != nil {
		h.metrics.ObserveJob(TaskDigest, metrics.OutcomeError)
		h.logger.Error().Err(err).Str("type", TaskDigest).Msg("Failed to build feedback digest")
		return err
	}

	if err := h.mailer.SendDigestEmail(ctx, recipients, digest); err != nil {
		h.metrics.ObserveJob(TaskDigest, metrics.OutcomeError)
		h.logger.Error().Err(err).Str("type", TaskDigest).Msg("Failed to send feedback digest")
		return err
	}

	h.metrics.ObserveJob(TaskDigest, metrics.OutcomeSuccess)
	h.logger.Info().
		Str("type", TaskDigest).
		Dur("window", window).
		Int("recipients", len(recipients)).
		Int64("total", digest.Total).
		Msg("Sent feedback digest")
	return nil
}
