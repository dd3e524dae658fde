package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-recall/internal/card"
	"go-recall/internal/config"
	"go-recall/internal/db"
	"go-recall/internal/workout"
)

// GET /today
func TodayHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheduler := workout.NewScheduler(db.DB, cfg.Workout.CandidateLimit)
		plan, err := scheduler.GetOrSchedule()
		if err != nil {
			respondError(c, err)
			return
		}
		if plan == nil {
			c.JSON(http.StatusOK, gin.H{"workout": nil, "message": "No cards to practice today"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"workout": plan})
	}
}

type CompleteWorkoutRequest struct {
	Results []struct {
		ItemID string `json:"item_id"`
		Result string `json:"result"`
	} `json:"results"`
}

// POST /today/workouts/:id/complete
func CompleteWorkoutHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		workoutID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid workout id"}})
			return
		}

		var req CompleteWorkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}

		inputs := make([]workout.ItemResultInput, 0, len(req.Results))
		for _, entry := range req.Results {
			itemID, err := uuid.Parse(entry.ItemID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid item id"}})
				return
			}
			result, err := card.ParseReviewResult(entry.Result)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
				return
			}
			inputs = append(inputs, workout.ItemResultInput{ItemID: itemID, Result: result})
		}

		scheduler := workout.NewScheduler(db.DB, cfg.Workout.CandidateLimit)
		summary, err := scheduler.CompleteWorkout(workoutID, inputs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
