package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cibaria/backend/internal/metrics"
	"github.com/pageza/cibaria/backend/internal/middleware"
	"github.com/pageza/cibaria/backend/internal/service"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies are the collaborators the HTTP layer is built from. The
// limiters, health checker and metrics are optional.
type Dependencies struct {
	Recipes       service.IRecipeService
	Claims        middleware.ClaimsResolver
	CreateLimiter *middleware.RateLimiter
	ModifyLimiter *middleware.RateLimiter
	Database      HealthChecker
	Metrics       *metrics.Metrics
}

// HealthCheck returns the health status of the API
func HealthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "healthy", "database": "unknown"}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
				return
			}
			status["database"] = "ok"
		}
		c.JSON(http.StatusOK, status)
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheck(deps.Database))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	NewRecipeHandler(deps.Recipes, deps.Claims, deps.CreateLimiter, deps.ModifyLimiter).RegisterRoutes(v1)
	NewAdminHandler(deps.Recipes, deps.Claims).RegisterRoutes(v1)

	if deps.CreateLimiter != nil && deps.ModifyLimiter != nil {
		RegisterRateLimitRoutes(v1, deps.Claims, deps.CreateLimiter, deps.ModifyLimiter)
	}
}

// RegisterRateLimitRoutes registers endpoints for checking rate limit status
func RegisterRateLimitRoutes(router *gin.RouterGroup, claims middleware.ClaimsResolver, creationLimiter, modificationLimiter *middleware.RateLimiter) {
	rateLimits := router.Group("/rate-limits", middleware.AuthMiddleware(claims))
	{
		rateLimits.GET("/recipe-creation", func(c *gin.Context) {
			p, _ := middleware.PrincipalFrom(c)
			subject := strconv.FormatUint(uint64(p.UserID), 10)
			remaining, resetTime, err := creationLimiter.Remaining(c.Request.Context(), subject)
			if err != nil {
				_ = c.Error(err)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"limit":      creationLimiter.Limit(),
				"remaining":  remaining,
				"reset_time": resetTime.Unix(),
				"window":     creationLimiter.Window().String(),
			})
		})

		rateLimits.GET("/recipe-modification/:id", func(c *gin.Context) {
			p, _ := middleware.PrincipalFrom(c)
			id, err := recipeID(c)
			if err != nil {
				_ = c.Error(err)
				return
			}
			subject := strconv.FormatUint(uint64(p.UserID), 10) + ":" + strconv.FormatUint(uint64(id), 10)
			remaining, resetTime, err := modificationLimiter.Remaining(c.Request.Context(), subject)
			if err != nil {
				_ = c.Error(err)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"limit":      modificationLimiter.Limit(),
				"remaining":  remaining,
				"reset_time": resetTime.Unix(),
				"window":     modificationLimiter.Window().String(),
				"recipe_id":  id,
			})
		})
	}
}
