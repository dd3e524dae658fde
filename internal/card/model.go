package card

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type categorizes what kind of knowledge a card captures.
type Type string

const (
	TypeFact      Type = "fact"
	TypeConcept   Type = "concept"
	TypeProcedure Type = "procedure"
	TypeClaim     Type = "claim"
)

func ParseType(value string) (Type, error) {
	switch Type(value) {
	case TypeFact, TypeConcept, TypeProcedure, TypeClaim:
		return Type(value), nil
	}
	return "", fmt.Errorf("unknown card type: %q", value)
}

// ReviewResult is the outcome of practicing a card once.
type ReviewResult string

const (
	ReviewPass ReviewResult = "pass"
	ReviewFail ReviewResult = "fail"
)

func ParseReviewResult(value string) (ReviewResult, error) {
	switch ReviewResult(value) {
	case ReviewPass, ReviewFail:
		return ReviewResult(value), nil
	}
	return "", fmt.Errorf("unknown review result: %q", value)
}

// MemoryCard is one atomic unit of knowledge. Stability estimates how well it
// is retained; priority is derived from stability, relevance and novelty and
// is recomputed whenever stability changes.
type MemoryCard struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DirectionID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"direction_id"`
	SkillPointID *uuid.UUID `gorm:"type:uuid;index" json:"skill_point_id,omitempty"`
	Title        string     `gorm:"size:256;not null" json:"title"`
	Body         string     `json:"body"`
	CardType     Type       `gorm:"type:varchar(16);not null" json:"card_type"`
	Stability    float64    `json:"stability"`
	Relevance    float64    `json:"relevance"`
	Novelty      float64    `json:"novelty"`
	Priority     float64    `json:"priority"`
	NextDue      *time.Time `gorm:"index" json:"next_due,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CalculatePriority keeps the card priority invariant:
// 0.4*(1-stability) + 0.4*relevance + 0.2*novelty, each component clamped to [0,1].
func CalculatePriority(stability, relevance, novelty float64) float64 {
	stabilityComponent := clamp01(1.0 - stability)
	relevanceComponent := clamp01(relevance)
	noveltyComponent := clamp01(novelty)
	return 0.4*stabilityComponent + 0.4*relevanceComponent + 0.2*noveltyComponent
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// Draft holds the caller-supplied fields when creating a card.
type Draft struct {
	SkillPointID *uuid.UUID
	Title        string
	Body         string
	CardType     Type
	Stability    *float64
	Relevance    *float64
	Novelty      *float64
	NextDue      *time.Time
}

// NewMemoryCard builds a card from a draft, filling the defaults a fresh card
// starts with and deriving its priority.
func NewMemoryCard(id uuid.UUID, directionID uuid.UUID, draft Draft, now time.Time) MemoryCard {
	stability := 0.1
	if draft.Stability != nil {
		stability = *draft.Stability
	}
	relevance := 0.7
	if draft.Relevance != nil {
		relevance = *draft.Relevance
	}
	novelty := 0.5
	if draft.Novelty != nil {
		novelty = *draft.Novelty
	}

	return MemoryCard{
		ID:           id,
		DirectionID:  directionID,
		SkillPointID: draft.SkillPointID,
		Title:        draft.Title,
		Body:         draft.Body,
		CardType:     draft.CardType,
		Stability:    stability,
		Relevance:    relevance,
		Novelty:      novelty,
		Priority:     CalculatePriority(stability, relevance, novelty),
		NextDue:      draft.NextDue,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
