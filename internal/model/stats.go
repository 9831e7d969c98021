package model

type OverallFeedbackStats struct {
	UniqueUsers        int64 `json:"uniqueUsers"`
	PositiveResponses  int64 `json:"positiveResponses"`
	NegativeResponses  int64 `json:"negativeResponses"`
	UndecidedResponses int64 `json:"undecidedResponses"`
}

// Add accumulates count responses of the given type into its bucket.
func (s *OverallFeedbackStats) Add(t FeedbackType, count int64) {
	switch t.Classify() {
	case FeedbackTypeYes:
		s.PositiveResponses += count
	case FeedbackTypeNo:
		s.NegativeResponses += count
	default:
		s.UndecidedResponses += count
	}
}

// Total is the number of responses across all buckets.
func (s OverallFeedbackStats) Total() int64 {
	return s.PositiveResponses + s.NegativeResponses + s.UndecidedResponses
}

// StatsByRole maps a user role to the stats of the records carrying it.
type StatsByRole map[string]*OverallFeedbackStats

// Entry returns the stats for role, creating an empty entry when missing.
func (s StatsByRole) Entry(role string) *OverallFeedbackStats {
	stats, ok := s[role]
	if !ok {
		stats = &OverallFeedbackStats{}
		s[role] = stats
	}
	return stats
}

// Totals sums the response counts of every role. UniqueUsers is left at zero
// because a user may appear under several roles.
func (s StatsByRole) Totals() OverallFeedbackStats {
	var total OverallFeedbackStats
	for _, stats := range s {
		total.PositiveResponses += stats.PositiveResponses
		total.NegativeResponses += stats.NegativeResponses
		total.UndecidedResponses += stats.UndecidedResponses
	}
	return total
}
