package skillpoint

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Level is the mastery level of a skill point.
type Level string

const (
	LevelUnknown  Level = "unknown"
	LevelEmerging Level = "emerging"
	LevelWorking  Level = "working"
	LevelFluent   Level = "fluent"
)

func ParseLevel(value string) (Level, error) {
	switch Level(value) {
	case LevelUnknown, LevelEmerging, LevelWorking, LevelFluent:
		return Level(value), nil
	}
	return "", fmt.Errorf("unknown skill level: %q", value)
}

// Gap maps the level to room-to-grow pressure: lower mastery leaves more room.
func (l Level) Gap() float64 {
	switch l {
	case LevelEmerging:
		return 0.75
	case LevelWorking:
		return 0.5
	case LevelFluent:
		return 0.25
	default:
		return 0.9
	}
}

type SkillPoint struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DirectionID uuid.UUID `gorm:"type:uuid;index;not null" json:"direction_id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Summary     *string   `json:"summary,omitempty"`
	Level       Level     `gorm:"type:varchar(16);not null;default:'unknown'" json:"level"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
