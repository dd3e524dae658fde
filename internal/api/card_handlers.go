package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-recall/internal/card"
	"go-recall/internal/db"
	"go-recall/internal/direction"
	"go-recall/internal/skillpoint"
)

type CardRequest struct {
	DirectionID  string     `json:"direction_id"`
	SkillPointID *string    `json:"skill_point_id"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	CardType     string     `json:"card_type"`
	Stability    *float64   `json:"stability"`
	Relevance    *float64   `json:"relevance"`
	Novelty      *float64   `json:"novelty"`
	NextDue      *time.Time `json:"next_due"`
}

func CreateCardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Title required"}})
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
		cardType, err := card.ParseType(req.CardType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
			return
		}
		draft := card.Draft{
			Title:     req.Title,
			Body:      req.Body,
			CardType:  cardType,
			Stability: req.Stability,
			Relevance: req.Relevance,
			Novelty:   req.Novelty,
			NextDue:   req.NextDue,
		}
		if req.SkillPointID != nil {
			skillID, err := uuid.Parse(*req.SkillPointID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid skill point id"}})
				return
			}
			s, err := skillpoint.NewRepository(db.DB).Get(skillID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
				return
			}
			if s == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Skill point not found"}})
				return
			}
			draft.SkillPointID = &skillID
		}
		created, err := card.NewRepository(db.DB).Create(directionID, draft)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func ListCardsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var search card.Search
		if raw := c.Query("direction_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid direction id"}})
				return
			}
			search.DirectionID = &id
		}
		if raw := c.Query("skill_point_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid skill point id"}})
				return
			}
			search.SkillPointID = &id
		}
		if raw := c.Query("due_before"); raw != "" {
			due, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid due_before timestamp"}})
				return
			}
			search.DueBefore = &due
		}
		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid limit"}})
				return
			}
			search.Limit = limit
		}
		search.Query = c.Query("q")

		cards, err := card.NewRepository(db.DB).Search(search)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cards": cards})
	}
}

func GetCardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid card id"}})
			return
		}
		found, err := card.NewRepository(db.DB).Get(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if found == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Card not found"}})
			return
		}
		c.JSON(http.StatusOK, found)
	}
}

func UpdateCardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid card id"}})
			return
		}
		var req struct {
			SkillPointID *string    `json:"skill_point_id"`
			Title        *string    `json:"title"`
			Body         *string    `json:"body"`
			CardType     *string    `json:"card_type"`
			Stability    *float64   `json:"stability"`
			Relevance    *float64   `json:"relevance"`
			Novelty      *float64   `json:"novelty"`
			NextDue      *time.Time `json:"next_due"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}

		update := card.Update{
			Title:     req.Title,
			Body:      req.Body,
			Stability: req.Stability,
			Relevance: req.Relevance,
			Novelty:   req.Novelty,
		}
		if req.CardType != nil {
			cardType, err := card.ParseType(*req.CardType)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
				return
			}
			update.CardType = &cardType
		}
		if req.SkillPointID != nil {
			if *req.SkillPointID == "" {
				var cleared *uuid.UUID
				update.SkillPointID = &cleared
			} else {
				skillID, err := uuid.Parse(*req.SkillPointID)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid skill point id"}})
					return
				}
				value := &skillID
				update.SkillPointID = &value
			}
		}
		if req.NextDue != nil {
			value := req.NextDue
			update.NextDue = &value
		}

		updated, err := card.NewRepository(db.DB).Update(id, update)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if updated == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Card not found"}})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteCardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid card id"}})
			return
		}
		deleted, err := card.NewRepository(db.DB).Delete(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "DB error"}})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Card not found"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
