package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-recall/internal/db"
	"go-recall/internal/direction"
	"go-recall/internal/skillpoint"
)

type SkillPointRequest struct {
	DirectionID string  `json:"direction_id"`
	Name        string  `json:"name"`
	Summary     *string `json:"summary"`
	Level       string  `json:"level"`
}

func CreateSkillPointHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SkillPointRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Name required"}})
			return
		}
		directionID, err := uuid.Parse(req.DirectionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid direction id"}})
			return
		}
		d, err := direction.NewRepository(db.DB).Get(directionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if d == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Direction not found"}})
			return
		}
		level := skillpoint.LevelUnknown
		if req.Level != "" {
			level, err = skillpoint.ParseLevel(req.Level)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
				return
			}
		}
		s, err := skillpoint.NewRepository(db.DB).Create(directionID, req.Name, req.Summary, level)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

func GetSkillPointHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid skill point id"}})
			return
		}
		s, err := skillpoint.NewRepository(db.DB).Get(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if s == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Skill point not found"}})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func UpdateSkillPointHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid skill point id"}})
			return
		}
		var req struct {
			Name    *string `json:"name"`
			Summary *string `json:"summary"`
			Level   *string `json:"level"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		update := skillpoint.Update{Name: req.Name, Summary: req.Summary}
		if req.Level != nil {
			level, err := skillpoint.ParseLevel(*req.Level)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
				return
			}
			update.Level = &level
		}
		s, err := skillpoint.NewRepository(db.DB).Update(id, update)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if s == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Skill point not found"}})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func DeleteSkillPointHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid skill point id"}})
			return
		}
		deleted, err := skillpoint.NewRepository(db.DB).Delete(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Skill point not found"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
