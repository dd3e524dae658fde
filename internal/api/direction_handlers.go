package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-recall/internal/db"
	"go-recall/internal/direction"
	"go-recall/internal/skillpoint"
)

type DirectionRequest struct {
	Name          string  `json:"name"`
	Stage         string  `json:"stage"`
	QuarterlyGoal *string `json:"quarterly_goal"`
}

func ListDirectionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		directions, err := direction.NewRepository(db.DB).List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"directions": directions})
	}
}

func CreateDirectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DirectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Name required"}})
			return
		}
		stage, err := direction.ParseStage(req.Stage)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
			return
		}
		d, err := direction.NewRepository(db.DB).Create(req.Name, stage, req.QuarterlyGoal)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

func GetDirectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid direction id"}})
			return
		}
		d, err := direction.NewRepository(db.DB).Get(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if d == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Direction not found"}})
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func UpdateDirectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid direction id"}})
			return
		}
		var req struct {
			Name          *string `json:"name"`
			Stage         *string `json:"stage"`
			QuarterlyGoal *string `json:"quarterly_goal"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		update := direction.Update{Name: req.Name, QuarterlyGoal: req.QuarterlyGoal}
		if req.Stage != nil {
			stage, err := direction.ParseStage(*req.Stage)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
				return
			}
			update.Stage = &stage
		}
		d, err := direction.NewRepository(db.DB).Update(id, update)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if d == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Direction not found"}})
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func DeleteDirectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid direction id"}})
			return
		}
		deleted, err := direction.NewRepository(db.DB).Delete(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Direction not found"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

func ListDirectionSkillPointsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid direction id"}})
			return
		}
		skills, err := skillpoint.NewRepository(db.DB).ListByDirection(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"skill_points": skills})
	}
}
