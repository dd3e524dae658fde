package skillpoint

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles persistence for skill points
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListAll() ([]SkillPoint, error) {
	var skills []SkillPoint
	if err := r.db.Order("created_at").Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *Repository) ListByDirection(directionID uuid.UUID) ([]SkillPoint, error) {
	var skills []SkillPoint
	if err := r.db.Where("direction_id = ?", directionID).Order("created_at").Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *Repository) Get(id uuid.UUID) (*SkillPoint, error) {
	var s SkillPoint
	err := r.db.First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Create(directionID uuid.UUID, name string, summary *string, level Level) (*SkillPoint, error) {
	if level == "" {
		level = LevelUnknown
	}
	s := SkillPoint{
		ID:          uuid.New(),
		DirectionID: directionID,
		Name:        name,
		Summary:     summary,
		Level:       level,
	}
	if err := r.db.Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

type Update struct {
	Name    *string
	Summary *string
	Level   *Level
}

func (r *Repository) Update(id uuid.UUID, update Update) (*SkillPoint, error) {
	s, err := r.Get(id)
	if err != nil || s == nil {
		return s, err
	}
	if update.Name != nil {
		s.Name = *update.Name
	}
	if update.Summary != nil {
		s.Summary = update.Summary
	}
	if update.Level != nil {
		s.Level = *update.Level
	}
	s.UpdatedAt = time.Now().UTC()
	if err := r.db.Save(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) Delete(id uuid.UUID) (bool, error) {
	result := r.db.Delete(&SkillPoint{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
