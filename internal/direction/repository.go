package direction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles persistence for directions
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List() ([]Direction, error) {
	var directions []Direction
	if err := r.db.Order("created_at").Find(&directions).Error; err != nil {
		return nil, err
	}
	return directions, nil
}

func (r *Repository) Get(id uuid.UUID) (*Direction, error) {
	var d Direction
	err := r.db.First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) Create(name string, stage Stage, quarterlyGoal *string) (*Direction, error) {
	d := Direction{
		ID:            uuid.New(),
		Name:          name,
		Stage:         stage,
		QuarterlyGoal: quarterlyGoal,
	}
	if err := r.db.Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

type Update struct {
	Name          *string
	Stage         *Stage
	QuarterlyGoal *string
}

func (r *Repository) Update(id uuid.UUID, update Update) (*Direction, error) {
	d, err := r.Get(id)
	if err != nil || d == nil {
		return d, err
	}
	if update.Name != nil {
		d.Name = *update.Name
	}
	if update.Stage != nil {
		d.Stage = *update.Stage
	}
	if update.QuarterlyGoal != nil {
		d.QuarterlyGoal = update.QuarterlyGoal
	}
	d.UpdatedAt = time.Now().UTC()
	if err := r.db.Save(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repository) Delete(id uuid.UUID) (bool, error) {
	result := r.db.Delete(&Direction{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
