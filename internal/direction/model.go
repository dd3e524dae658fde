package direction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage is the lifecycle stage of a learning direction. It biases which
// workout phase cards from this direction lean toward.
type Stage string

const (
	StageExplore   Stage = "explore"
	StageShape     Stage = "shape"
	StageAttack    Stage = "attack"
	StageStabilize Stage = "stabilize"
)

func ParseStage(value string) (Stage, error) {
	switch Stage(value) {
	case StageExplore, StageShape, StageAttack, StageStabilize:
		return Stage(value), nil
	}
	return "", fmt.Errorf("unknown direction stage: %q", value)
}

type Direction struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"size:128;not null" json:"name"`
	Stage         Stage      `gorm:"type:varchar(16);not null;default:'explore'" json:"stage"`
	QuarterlyGoal *string    `json:"quarterly_goal,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
