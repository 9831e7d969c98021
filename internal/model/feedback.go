// Package model holds the feedback record and the aggregate values derived from it.
package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// FeedbackID identifies a persisted feedback record. The zero value means the
// record has not been stored yet.
type FeedbackID struct {
	value int64
	set   bool
}

// NewFeedbackID returns the id of an existing record.
func NewFeedbackID(v int64) FeedbackID {
	return FeedbackID{value: v, set: true}
}

// FeedbackIDFromLegacy maps ids sent by older callers, where -1 meant "new".
// Ids are issued from 1, so zero (an omitted id) is new as well.
func FeedbackIDFromLegacy(v int64) FeedbackID {
	if v <= 0 {
		return FeedbackID{}
	}
	return NewFeedbackID(v)
}

// Value returns the id and whether it is set.
func (id FeedbackID) Value() (int64, bool) {
	return id.value, id.set
}

// IsNew reports whether the record has no id yet.
func (id FeedbackID) IsNew() bool {
	return !id.set
}

func (id FeedbackID) String() string {
	if !id.set {
		return "new"
	}
	return strconv.FormatInt(id.value, 10)
}

func (id FeedbackID) MarshalJSON() ([]byte, error) {
	if !id.set {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

func (id *FeedbackID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = FeedbackID{}
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*id = FeedbackIDFromLegacy(v)
	return nil
}

// FeedbackType is the answer a user gave. Values other than YES and NO are
// counted as undecided.
type FeedbackType string

const (
	FeedbackTypeYes       FeedbackType = "YES"
	FeedbackTypeNo        FeedbackType = "NO"
	FeedbackTypeUndecided FeedbackType = "UNDECIDED"
)

// Classify returns the stats bucket the type falls into.
func (t FeedbackType) Classify() FeedbackType {
	switch t {
	case FeedbackTypeYes, FeedbackTypeNo:
		return t
	default:
		return FeedbackTypeUndecided
	}
}

type FeedbackItem struct {
	ID             FeedbackID   `json:"id"`
	UserID         string       `json:"userId"`
	UserRole       string       `json:"userRole"`
	FeedbackType   FeedbackType `json:"feedbackType"`
	Feedback       *string      `json:"feedback"`
	SubmissionTime time.Time    `json:"submissionTime"`
}

// HasComment reports whether the record carries a non-empty comment.
func (f FeedbackItem) HasComment() bool {
	return f.Feedback != nil && *f.Feedback != ""
}

// QueryParameters filters and pages feedback queries. Empty strings and nil
// dates disable the matching filter where the query allows it.
type QueryParameters struct {
	StartDisplayCount     int        `json:"startDisplayCount" validate:"min=0"`
	ItemsDisplayed        int        `json:"itemsDisplayed" validate:"min=0"`
	UserRole              string     `json:"userRole"`
	FeedbackType          string     `json:"feedbackType"`
	CommentsOnlyDisplayed bool       `json:"commentsOnlyDisplayed"`
	StartDisplayDate      *time.Time `json:"startDisplayDate"`
	EndDisplayDate        *time.Time `json:"endDisplayDate"`
}

// HasDateRange reports whether both date bounds are set.
func (p QueryParameters) HasDateRange() bool {
	return p.StartDisplayDate != nil && p.EndDisplayDate != nil
}
