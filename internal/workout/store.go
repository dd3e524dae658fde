package workout

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Workout is the persisted daily workout header. The full plan, including
// per-item results once completed, lives in the JSON payload.
type Workout struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduledFor time.Time      `gorm:"not null;index" json:"scheduled_for"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	Status       Status         `gorm:"size:16;not null;index" json:"status"`
	Payload      datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// WorkoutItem is one scheduled card, kept relational so review history can be
// rebuilt without parsing payloads.
type WorkoutItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkoutID uuid.UUID  `gorm:"type:uuid;not null;index" json:"workout_id"`
	CardID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"card_id"`
	Sequence  int        `gorm:"not null" json:"sequence"`
	Phase     Phase      `gorm:"size:16;not null" json:"phase"`
	Result    *string    `gorm:"size:16" json:"result,omitempty"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// WorkoutSummary keeps one analytics row per completed workout.
type WorkoutSummary struct {
	WorkoutID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"workout_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
	TotalItems  int       `gorm:"not null" json:"total_items"`
	PassRate    float64   `gorm:"not null" json:"pass_rate"`
	KvDelta     float64   `gorm:"not null" json:"kv_delta"`
	Udr         float64   `gorm:"not null" json:"udr"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store handles workout persistence.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a store bound to the given transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// dayRange brackets the UTC calendar day containing t.
func dayRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// LatestPendingForDay returns the newest pending plan scheduled on the same
// UTC day, or nil when the day has none.
func (s *Store) LatestPendingForDay(day time.Time) (*TodayPlan, error) {
	start, end := dayRange(day)

	var w Workout
	err := s.db.
		Where("status = ? AND scheduled_for >= ? AND scheduled_for < ?", StatusPending, start, end).
		Order("created_at DESC").
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var plan TodayPlan
	if err := json.Unmarshal(w.Payload, &plan); err != nil {
		return nil, fmt.Errorf("decode workout payload: %w", err)
	}
	return &plan, nil
}

// CreateTodayWorkout persists the plan header and its items atomically.
func (s *Store) CreateTodayWorkout(plan *TodayPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode workout payload: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		w := Workout{
			ID:           plan.WorkoutID,
			ScheduledFor: plan.ScheduledFor,
			Status:       StatusPending,
			Payload:      datatypes.JSON(payload),
			CreatedAt:    plan.GeneratedAt,
			UpdatedAt:    plan.GeneratedAt,
		}
		if err := tx.Create(&w).Error; err != nil {
			return err
		}

		for _, segment := range plan.Segments {
			for _, item := range segment.Items {
				record := WorkoutItem{
					ID:        item.ItemID,
					WorkoutID: plan.WorkoutID,
					CardID:    item.Card.ID,
					Sequence:  item.Sequence,
					Phase:     segment.Phase,
					DueAt:     item.Card.NextDue,
					CreatedAt: plan.GeneratedAt,
				}
				if err := tx.Create(&record).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// EnsurePending fails with ErrNotFound for unknown workouts and a validation
// error for workouts that already completed.
func (s *Store) EnsurePending(workoutID uuid.UUID) error {
	var w Workout
	err := s.db.Select("id", "status").First(&w, "id = ?", workoutID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if w.Status != StatusPending {
		return validationf("workout already completed")
	}
	return nil
}

// ItemCardMap resolves the workout's item ids to card ids.
func (s *Store) ItemCardMap(workoutID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	var items []WorkoutItem
	if err := s.db.Select("id", "card_id").Where("workout_id = ?", workoutID).Find(&items).Error; err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]uuid.UUID, len(items))
	for _, item := range items {
		result[item.ID] = item.CardID
	}
	return result, nil
}

// SetItemResult records one item's outcome on its relational row.
func (s *Store) SetItemResult(itemID uuid.UUID, result string, dueAt *time.Time) error {
	return s.db.Model(&WorkoutItem{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"result": result,
		"due_at": dueAt,
	}).Error
}

// MarkCompleted flips the workout to completed.
func (s *Store) MarkCompleted(workoutID uuid.UUID, completedAt time.Time) error {
	return s.db.Model(&Workout{}).Where("id = ?", workoutID).Updates(map[string]interface{}{
		"status":       StatusCompleted,
		"completed_at": completedAt,
		"updated_at":   completedAt,
	}).Error
}

// AppendResults writes the per-item outcomes into the stored plan payload so
// the day's plan can be replayed with results attached.
func (s *Store) AppendResults(workoutID uuid.UUID, updates map[uuid.UUID]ItemOutcome) error {
	var w Workout
	if err := s.db.First(&w, "id = ?", workoutID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var plan TodayPlan
	if err := json.Unmarshal(w.Payload, &plan); err != nil {
		return fmt.Errorf("decode workout payload: %w", err)
	}

	for si := range plan.Segments {
		items := plan.Segments[si].Items
		for ii := range items {
			if outcome, ok := updates[items[ii].ItemID]; ok {
				result := outcome
				items[ii].Result = &result
			}
		}
	}

	payload, err := json.Marshal(&plan)
	if err != nil {
		return fmt.Errorf("encode workout payload: %w", err)
	}

	return s.db.Model(&Workout{}).Where("id = ?", workoutID).
		Update("payload", datatypes.JSON(payload)).Error
}

// RecordSummary upserts the analytics row for a completed workout.
func (s *Store) RecordSummary(workoutID uuid.UUID, completedAt time.Time, metrics SummaryMetrics) error {
	summary := WorkoutSummary{
		WorkoutID:   workoutID,
		CompletedAt: completedAt,
		TotalItems:  metrics.TotalItems,
		PassRate:    metrics.PassRate,
		KvDelta:     metrics.KvDelta,
		Udr:         metrics.Udr,
		CreatedAt:   completedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "workout_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"completed_at", "total_items", "pass_rate", "kv_delta", "udr", "updated_at",
		}),
	}).Create(&summary).Error
}

// HasAnyCards is a cheap guard against scheduling over an empty card pool.
func (s *Store) HasAnyCards() (bool, error) {
	var count int64
	if err := s.db.Table("memory_cards").Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
