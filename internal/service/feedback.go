package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Naenyn/FeedbackPortlet/internal/model"
	"github.com/rs/zerolog"
)

// DigestCommentLimit caps the comments listed in a digest.
const DigestCommentLimit = 20

// FeedbackStore is implemented by repository.FeedbackRepository.
type FeedbackStore interface {
	StoreFeedback(ctx context.Context, item *model.FeedbackItem) error
	ListFeedback(ctx context.Context) ([]model.FeedbackItem, error)
	QueryFeedback(ctx context.Context, params model.QueryParameters) ([]model.FeedbackItem, error)
	CountFeedback(ctx context.Context, params model.QueryParameters) (int64, error)
	Stats(ctx context.Context) (model.OverallFeedbackStats, error)
	StatsByRole(ctx context.Context) (model.StatsByRole, error)
}

type FeedbackService struct {
	store  FeedbackStore
	logger *zerolog.Logger
	now    func() time.Time
}

func NewFeedbackService(store FeedbackStore, logger *zerolog.Logger) *FeedbackService {
	return &FeedbackService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// StoreFeedback stamps a zero submission time with the current UTC time
// before storing the item.
func (s *FeedbackService) StoreFeedback(ctx context.Context, item *model.FeedbackItem) error {
	if item.SubmissionTime.IsZero() {
		item.SubmissionTime = s.now().UTC()
	}

	isNew := item.ID.IsNew()
	if err := s.store.StoreFeedback(ctx, item); err != nil {
		return err
	}

	s.logger.Info().
		Stringer("feedback_id", item.ID).
		Bool("created", isNew).
		Str("user_role", item.UserRole).
		Str("feedback_type", string(item.FeedbackType)).
		Msg("feedback stored")
	return nil
}

func (s *FeedbackService) ListFeedback(ctx context.Context) ([]model.FeedbackItem, error) {
	return s.store.ListFeedback(ctx)
}

func (s *FeedbackService) QueryFeedback(ctx context.Context, params model.QueryParameters) ([]model.FeedbackItem, error) {
	return s.store.QueryFeedback(ctx, params)
}

func (s *FeedbackService) CountFeedback(ctx context.Context, params model.QueryParameters) (int64, error) {
	return s.store.CountFeedback(ctx, params)
}

func (s *FeedbackService) Stats(ctx context.Context) (model.OverallFeedbackStats, error) {
	return s.store.Stats(ctx)
}

func (s *FeedbackService) StatsByRole(ctx context.Context) (model.StatsByRole, error) {
	return s.store.StatsByRole(ctx)
}

// BuildDigest collects the overall and per-role stats, the number of
// submissions within window and the most recent comments in it.
func (s *FeedbackService) BuildDigest(ctx context.Context, window time.Duration) (*model.Digest, error) {
	to := s.now().UTC()
	from := to.Add(-window)

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("digest stats: %w", err)
	}

	byRole, err := s.store.StatsByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("digest stats by role: %w", err)
	}

	total, err := s.store.CountFeedback(ctx, model.QueryParameters{
		StartDisplayDate: &from,
		EndDisplayDate:   &to,
	})
	if err != nil {
		return nil, fmt.Errorf("digest total: %w", err)
	}

	comments, err := s.store.QueryFeedback(ctx, model.QueryParameters{
		ItemsDisplayed:        DigestCommentLimit,
		CommentsOnlyDisplayed: true,
		StartDisplayDate:      &from,
		EndDisplayDate:        &to,
	})
	if err != nil {
		return nil, fmt.Errorf("digest comments: %w", err)
	}

	// The legacy listing predicate lets empty comments through.
	recent := make([]model.FeedbackItem, 0, len(comments))
	for _, item := range comments {
		if item.HasComment() {
			recent = append(recent, item)
		}
	}

	return &model.Digest{
		From:           from,
		To:             to,
		Stats:          stats,
		ByRole:         byRole,
		Total:          total,
		RecentComments: recent,
	}, nil
}
