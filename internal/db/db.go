package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"go-recall/internal/card"
	"go-recall/internal/config"
	"go-recall/internal/direction"
	"go-recall/internal/skillpoint"
	"go-recall/internal/user"
	"go-recall/internal/workout"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&user.User{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&direction.Direction{}, &skillpoint.SkillPoint{}, &card.MemoryCard{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&workout.Workout{}, &workout.WorkoutItem{}, &workout.WorkoutSummary{}); err != nil {
		return err
	}

	DB = db
	log.Printf("[DB] connected (%s) and migrations applied", cfg.Database.Driver)
	return nil
}
