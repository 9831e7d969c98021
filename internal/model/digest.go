package model

import (
	"sort"
	"time"
)

// Digest summarizes the feedback received over a time window.
type Digest struct {
	From           time.Time
	To             time.Time
	Stats          OverallFeedbackStats
	ByRole         StatsByRole
	Total          int64
	RecentComments []FeedbackItem
}

// Roles returns the roles present in ByRole in a stable order.
func (d Digest) Roles() []string {
	roles := make([]string, 0, len(d.ByRole))
	for role := range d.ByRole {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
