package card

import (
	"time"
)

// ReviewStats is the per-card read model rebuilt from completed workout
// history on every scheduling pass. It is never persisted.
type ReviewStats struct {
	LastSeen          *time.Time
	LastPassAt        *time.Time
	LastFailAt        *time.Time
	PassCount         int64
	FailCount         int64
	ConsecutivePasses int
	ConsecutiveFails  int
	RecentResults     []ReviewResult // newest first, capped at RecentResultsLimit
}

// RecentResultsLimit bounds the recent-results ring kept per card.
const RecentResultsLimit = 8

func (s ReviewStats) TotalReviews() int64 {
	return s.PassCount + s.FailCount
}

func (s ReviewStats) FailRate() float64 {
	total := s.TotalReviews()
	if total == 0 {
		return 0
	}
	return clamp01(float64(s.FailCount) / float64(total))
}
