package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cibaria/backend/internal/middleware"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/service"
)

// AdminHandler serves the administrator dashboard.
type AdminHandler struct {
	recipes service.IRecipeService
	claims  middleware.ClaimsResolver
}

func NewAdminHandler(recipes service.IRecipeService, claims middleware.ClaimsResolver) *AdminHandler {
	return &AdminHandler{recipes: recipes, claims: claims}
}

// RegisterRoutes registers the admin routes, all of which need the ADMIN role.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin", middleware.AuthMiddleware(h.claims), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", h.GetStats)
		admin.GET("/recipes", h.ListRecipes)
	}
}

// GetStats returns user and recipe counts.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.recipes.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListRecipes returns every recipe including private ones.
func (h *AdminHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}
