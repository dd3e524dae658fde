package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go-recall/internal/config"
	"go-recall/internal/workout"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"workout": gin.H{
				"candidate_limit": cfg.Workout.CandidateLimit,
			},
		})
	}
}

// respondError maps engine errors onto the API's error envelope.
func respondError(c *gin.Context, err error) {
	var v *workout.ValidationError
	switch {
	case errors.Is(err, workout.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Not found"}})
	case errors.As(err, &v):
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": v.Message}})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal error"}})
	}
}
