package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Naenyn/FeedbackPortlet/internal/model"
	"github.com/Naenyn/FeedbackPortlet/internal/validation"
	"github.com/hibiken/asynq"
)

const (
	TaskStoreFeedback = "feedback:store"
	TaskDigest        = "feedback:digest"
)

// StoreFeedbackPayload is the wire form of a submission. ID follows the
// legacy convention where -1 means a new record; an omitted ID is new too.
type StoreFeedbackPayload struct {
	ID             int64      `json:"id,omitempty"`
	UserID         string     `json:"user_id" validate:"required"`
	UserRole       string     `json:"user_role"`
	FeedbackType   string     `json:"feedback_type" validate:"required"`
	Feedback       *string    `json:"feedback"`
	SubmissionTime *time.Time `json:"submission_time"`
}

func (p *StoreFeedbackPayload) Validate() error {
	return validation.Struct(p)
}

// Item maps the payload onto a feedback record. A missing submission time
// is left zero for the service to fill in.
func (p *StoreFeedbackPayload) Item() *model.FeedbackItem {
	item := &model.FeedbackItem{
		ID:           model.FeedbackIDFromLegacy(p.ID),
		UserID:       p.UserID,
		UserRole:     p.UserRole,
		FeedbackType: model.FeedbackType(p.FeedbackType),
		Feedback:     p.Feedback,
	}
	if p.SubmissionTime != nil {
		item.SubmissionTime = p.SubmissionTime.UTC()
	}
	return item
}

// DigestPayload overrides the configured window and recipients when set.
type DigestPayload struct {
	WindowHours int      `json:"window_hours,omitempty" validate:"omitempty,min=1,max=8760"`
	Recipients  []string `json:"recipients,omitempty" validate:"omitempty,dive,email"`
}

func (p *DigestPayload) Validate() error {
	return validation.Struct(p)
}

func NewStoreFeedbackTask(p StoreFeedbackPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal store feedback payload: %w", err)
	}

	return asynq.NewTask(
		TaskStoreFeedback,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue("critical"),
		asynq.Timeout(30*time.Second),
	), nil
}

func NewDigestTask(p DigestPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal digest payload: %w", err)
	}

	return asynq.NewTask(
		TaskDigest,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("low"),
		asynq.Timeout(2*time.Minute),
	), nil
}
