package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"go-recall/internal/auth"
	"go-recall/internal/config"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/recall" or any custom path, always starts with '/'

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb), LogoutHandler(rdb))
		group.GET("/auth/me", auth.AuthMiddleware(cfg, rdb), MeHandler())

		authed := group.Group("", auth.AuthMiddleware(cfg, rdb))

		// Directions
		authed.GET("/directions", ListDirectionsHandler())
		authed.POST("/directions", CreateDirectionHandler())
		authed.GET("/directions/:id", GetDirectionHandler())
		authed.PUT("/directions/:id", UpdateDirectionHandler())
		authed.DELETE("/directions/:id", DeleteDirectionHandler())
		authed.GET("/directions/:id/skill-points", ListDirectionSkillPointsHandler())

		// Skill points
		authed.POST("/skill-points", CreateSkillPointHandler())
		authed.GET("/skill-points/:id", GetSkillPointHandler())
		authed.PUT("/skill-points/:id", UpdateSkillPointHandler())
		authed.DELETE("/skill-points/:id", DeleteSkillPointHandler())

		// Memory cards
		authed.GET("/cards", ListCardsHandler())
		authed.POST("/cards", CreateCardHandler())
		authed.GET("/cards/:id", GetCardHandler())
		authed.PUT("/cards/:id", UpdateCardHandler())
		authed.DELETE("/cards/:id", DeleteCardHandler())

		// Daily workout
		authed.GET("/today", TodayHandler(cfg))
		authed.POST("/today/workouts/:id/complete", CompleteWorkoutHandler(cfg))
	}
	return r
}
