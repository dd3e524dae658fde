package card

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles persistence for memory cards
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForToday returns up to limit candidate cards for the daily workout,
// due-or-overdue cards first, then by priority descending.
func (r *Repository) ListForToday(now time.Time, limit int) ([]MemoryCard, error) {
	var cards []MemoryCard
	err := r.db.
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN next_due IS NULL OR next_due <= ? THEN 0 ELSE 1 END, next_due, priority DESC",
			Vars:               []interface{}{now},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// Search filters the card pool.
type Search struct {
	DirectionID  *uuid.UUID
	SkillPointID *uuid.UUID
	Query        string
	DueBefore    *time.Time
	Limit        int
}

func (r *Repository) Search(params Search) ([]MemoryCard, error) {
	query := r.db.Model(&MemoryCard{})
	if params.DirectionID != nil {
		query = query.Where("direction_id = ?", *params.DirectionID)
	}
	if params.SkillPointID != nil {
		query = query.Where("skill_point_id = ?", *params.SkillPointID)
	}
	if params.DueBefore != nil {
		query = query.Where("next_due IS NULL OR next_due <= ?", *params.DueBefore)
	}
	if params.Query != "" {
		pattern := "%" + strings.ToLower(params.Query) + "%"
		query = query.Where("lower(title) LIKE ? OR lower(body) LIKE ?", pattern, pattern)
	}
	query = query.Order("priority DESC, created_at DESC")
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}

	var cards []MemoryCard
	if err := query.Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *Repository) Get(id uuid.UUID) (*MemoryCard, error) {
	var c MemoryCard
	err := r.db.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) Create(directionID uuid.UUID, draft Draft) (*MemoryCard, error) {
	c := NewMemoryCard(uuid.New(), directionID, draft, time.Now().UTC())
	if err := r.db.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Update patches caller-editable fields. Stability/priority are normally owned
// by the completion engine; direct edits recompute priority to keep the invariant.
type Update struct {
	SkillPointID **uuid.UUID
	Title        *string
	Body         *string
	CardType     *Type
	Stability    *float64
	Relevance    *float64
	Novelty      *float64
	NextDue      **time.Time
}

func (r *Repository) Update(id uuid.UUID, update Update) (*MemoryCard, error) {
	c, err := r.Get(id)
	if err != nil || c == nil {
		return c, err
	}
	if update.SkillPointID != nil {
		c.SkillPointID = *update.SkillPointID
	}
	if update.Title != nil {
		c.Title = *update.Title
	}
	if update.Body != nil {
		c.Body = *update.Body
	}
	if update.CardType != nil {
		c.CardType = *update.CardType
	}
	if update.Stability != nil {
		c.Stability = *update.Stability
	}
	if update.Relevance != nil {
		c.Relevance = *update.Relevance
	}
	if update.Novelty != nil {
		c.Novelty = *update.Novelty
	}
	if update.NextDue != nil {
		c.NextDue = *update.NextDue
	}
	c.Priority = CalculatePriority(c.Stability, c.Relevance, c.Novelty)
	c.UpdatedAt = time.Now().UTC()
	if err := r.db.Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes back the scheduler-owned fields after a completion pass.
func (r *Repository) Save(c *MemoryCard) error {
	return r.db.Model(&MemoryCard{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"stability":  c.Stability,
		"priority":   c.Priority,
		"next_due":   c.NextDue,
		"updated_at": c.UpdatedAt,
	}).Error
}

func (r *Repository) Delete(id uuid.UUID) (bool, error) {
	result := r.db.Delete(&MemoryCard{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&MemoryCard{}).Count(&count).Error
	return count, err
}

type reviewRow struct {
	CardID     uuid.UUID
	Result     string
	OccurredAt string
}

// sqlite hands back the COALESCE expression column as text, so occurred_at is
// scanned as a string and parsed against the layouts the drivers emit
// (go-sqlite3's timestamp format, RFC 3339 from database/sql conversion).
var reviewTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseReviewTime(raw string) (time.Time, error) {
	for _, layout := range reviewTimeLayouts {
		if at, err := time.Parse(layout, raw); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized review timestamp %q", raw)
}

// ReviewStatsAll rebuilds per-card review statistics from completed workout
// history. Rows come back newest first so streaks and the recent-results ring
// fall out of a single scan. Item creation time and sequence break timestamp
// ties so rebuilds are deterministic.
func (r *Repository) ReviewStatsAll() (map[uuid.UUID]ReviewStats, error) {
	var rows []reviewRow
	err := r.db.Table("workout_items").
		Select("workout_items.card_id AS card_id, workout_items.result AS result, COALESCE(workouts.completed_at, workout_items.created_at) AS occurred_at").
		Joins("JOIN workouts ON workouts.id = workout_items.workout_id").
		Where("workout_items.result IS NOT NULL AND workouts.status = ?", "completed").
		Order("occurred_at DESC, workout_items.created_at DESC, workout_items.sequence DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[uuid.UUID]ReviewStats)
	streakBroken := make(map[uuid.UUID]bool)

	for _, row := range rows {
		result, err := ParseReviewResult(row.Result)
		if err != nil {
			return nil, err
		}
		occurred, err := parseReviewTime(row.OccurredAt)
		if err != nil {
			return nil, err
		}

		entry := stats[row.CardID]
		if entry.LastSeen == nil {
			seen := occurred
			entry.LastSeen = &seen
		}
		switch result {
		case ReviewPass:
			entry.PassCount++
			if entry.LastPassAt == nil {
				at := occurred
				entry.LastPassAt = &at
			}
		case ReviewFail:
			entry.FailCount++
			if entry.LastFailAt == nil {
				at := occurred
				entry.LastFailAt = &at
			}
		}

		if len(entry.RecentResults) < RecentResultsLimit {
			entry.RecentResults = append(entry.RecentResults, result)
		}

		// Streaks run from the newest result until the first break.
		if !streakBroken[row.CardID] {
			switch {
			case result == ReviewPass && entry.ConsecutiveFails == 0:
				entry.ConsecutivePasses++
			case result == ReviewFail && entry.ConsecutivePasses == 0:
				entry.ConsecutiveFails++
			default:
				streakBroken[row.CardID] = true
			}
		}

		stats[row.CardID] = entry
	}

	return stats, nil
}
