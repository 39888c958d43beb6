package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// Handlers groups the handlers mounted under /api.
type Handlers struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Catalog *CatalogHandler
	Recipes *RecipeHandler
}

// HealthCheck reports whether the database answers.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
	}
}

// RegisterRoutes mounts the health check and every API route.
func RegisterRoutes(router *gin.Engine, db *gorm.DB, h Handlers) {
	router.GET("/health", HealthCheck(db))
	router.GET("/api/health", HealthCheck(db))

	v1 := router.Group("/api")
	h.Auth.RegisterRoutes(v1)
	h.Users.RegisterRoutes(v1)
	h.Catalog.RegisterRoutes(v1)
	h.Recipes.RegisterRoutes(v1)
}
