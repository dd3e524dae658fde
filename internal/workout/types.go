package workout

import (
	"time"

	"github.com/google/uuid"
	"go-recall/internal/card"
	"go-recall/internal/direction"
	"go-recall/internal/skillpoint"
)

// Phase is one of the three practice segments of a daily workout.
type Phase string

const (
	PhaseQuiz   Phase = "quiz"
	PhaseApply  Phase = "apply"
	PhaseReview Phase = "review"
)

// Status of a workout. A workout moves pending -> completed exactly once.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ItemPlan is one card scheduled inside a segment. The item id is its own
// identity, independent of the card id, so results can be correlated back to
// the stored plan.
type ItemPlan struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Card     card.MemoryCard `json:"card"`
	Sequence int             `json:"sequence"`
	Result   *ItemOutcome    `json:"result,omitempty"`
}

// ItemOutcome is written into the stored plan payload during completion.
type ItemOutcome struct {
	Result    card.ReviewResult `json:"result"`
	NextDue   *time.Time        `json:"next_due,omitempty"`
	Stability float64           `json:"stability"`
	Priority  float64           `json:"priority"`
}

type SegmentPlan struct {
	Phase        Phase         `json:"phase"`
	Focus        string        `json:"focus,omitempty"`
	FocusDetails *SegmentFocus `json:"focus_details,omitempty"`
	Items        []ItemPlan    `json:"items"`
}

type SegmentFocus struct {
	Headline           string                  `json:"headline"`
	Highlights         []string                `json:"highlights"`
	DirectionBreakdown []SegmentDirectionFocus `json:"direction_breakdown,omitempty"`
	SkillBreakdown     []SegmentSkillFocus     `json:"skill_breakdown,omitempty"`
}

type SegmentDirectionFocus struct {
	DirectionID uuid.UUID       `json:"direction_id"`
	Name        string          `json:"name"`
	Stage       direction.Stage `json:"stage"`
	Count       int             `json:"count"`
	Share       float64         `json:"share"`
	Signals     []string        `json:"signals"`
}

type SegmentSkillFocus struct {
	SkillPointID uuid.UUID        `json:"skill_point_id"`
	Name         string           `json:"name"`
	Level        skillpoint.Level `json:"level"`
	Count        int              `json:"count"`
	Share        float64          `json:"share"`
	Signals      []string         `json:"signals"`
}

type Totals struct {
	TotalCards int `json:"total_cards"`
	Quiz       int `json:"quiz"`
	Apply      int `json:"apply"`
	Review     int `json:"review"`
}

// TodayPlan is the full daily workout, persisted once per calendar day.
type TodayPlan struct {
	WorkoutID    uuid.UUID     `json:"workout_id"`
	ScheduledFor time.Time     `json:"scheduled_for"`
	GeneratedAt  time.Time     `json:"generated_at"`
	Segments     []SegmentPlan `json:"segments"`
	Totals       Totals        `json:"totals"`
}

// ItemResultInput is one submitted pass/fail outcome.
type ItemResultInput struct {
	ItemID uuid.UUID         `json:"item_id"`
	Result card.ReviewResult `json:"result"`
}

// CardProgress records how completing one item changed its card.
type CardProgress struct {
	CardID    uuid.UUID         `json:"card_id"`
	Result    card.ReviewResult `json:"result"`
	Stability float64           `json:"stability"`
	Priority  float64           `json:"priority"`
	NextDue   *time.Time        `json:"next_due,omitempty"`
}

type SummaryMetrics struct {
	TotalItems         int                         `json:"total_items"`
	PassCount          int                         `json:"pass_count"`
	FailCount          int                         `json:"fail_count"`
	PassRate           float64                     `json:"pass_rate"`
	KvDelta            float64                     `json:"kv_delta"`
	Udr                float64                     `json:"udr"`
	RecommendedFocus   string                      `json:"recommended_focus,omitempty"`
	DirectionBreakdown []SummaryDirectionBreakdown `json:"direction_breakdown"`
	SkillBreakdown     []SummarySkillBreakdown     `json:"skill_breakdown"`
}

type SummaryDirectionBreakdown struct {
	DirectionID uuid.UUID       `json:"direction_id"`
	Name        string          `json:"name"`
	Stage       direction.Stage `json:"stage"`
	Total       int             `json:"total"`
	PassCount   int             `json:"pass_count"`
	FailCount   int             `json:"fail_count"`
	PassRate    float64         `json:"pass_rate"`
	KvDelta     float64         `json:"kv_delta"`
	Udr         float64         `json:"udr"`
	AvgPriority float64         `json:"avg_priority"`
	Share       float64         `json:"share"`
}

type SummarySkillBreakdown struct {
	SkillPointID uuid.UUID        `json:"skill_point_id"`
	Name         string           `json:"name"`
	Level        skillpoint.Level `json:"level"`
	Total        int              `json:"total"`
	PassCount    int              `json:"pass_count"`
	FailCount    int              `json:"fail_count"`
	PassRate     float64          `json:"pass_rate"`
	KvDelta      float64          `json:"kv_delta"`
	Udr          float64          `json:"udr"`
	AvgPriority  float64          `json:"avg_priority"`
	Share        float64          `json:"share"`
}

// CompletionSummary is returned to the caller after a workout is completed.
type CompletionSummary struct {
	WorkoutID   uuid.UUID      `json:"workout_id"`
	CompletedAt time.Time      `json:"completed_at"`
	Updates     []CardProgress `json:"updates"`
	Metrics     SummaryMetrics `json:"metrics"`
	Insights    []string       `json:"insights"`
}

// DirectionDescriptor is the slice of a direction the engine needs.
type DirectionDescriptor struct {
	Name  string
	Stage direction.Stage
}

// SkillDescriptor is the slice of a skill point the engine needs.
type SkillDescriptor struct {
	Name  string
	Level skillpoint.Level
}
