package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/middleware"
	"github.com/pageza/cibaria/backend/internal/service"
	"github.com/pageza/cibaria/backend/internal/types"
)

type RecipeHandler struct {
	recipes       service.IRecipeService
	claims        middleware.ClaimsResolver
	createLimiter *middleware.RateLimiter
	modifyLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipes service.IRecipeService, claims middleware.ClaimsResolver, createLimiter, modifyLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		claims:        claims,
		createLimiter: createLimiter,
		modifyLimiter: modifyLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.AuthMiddleware(h.claims)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.BrowseRecipes)
		recipes.GET("/search", h.SearchRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", authed, h.createLimiter.Middleware(), h.CreateRecipe)
		recipes.PUT("/:id", authed, h.modifyLimiter.Middleware(), h.UpdateRecipe)
		recipes.DELETE("/:id", authed, h.modifyLimiter.Middleware(), h.DeleteRecipe)

		recipes.POST("/:id/rating", authed, h.RateRecipe)
		recipes.GET("/:id/rating", authed, h.GetUserRating)
		recipes.GET("/:id/is-owner", authed, h.IsOwner)

		recipes.GET("/:id/favorite", authed, h.IsFavorite)
		recipes.POST("/:id/favorite", authed, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", authed, h.UnfavoriteRecipe)
	}

	me := router.Group("/me", authed)
	{
		me.GET("/recipes", h.ListOwnRecipes)
		me.GET("/favorites", h.ListFavorites)
	}
}

// BrowseRecipes returns one filtered page of the catalog. Only public
// recipes are listed unless public_only=false.
func (h *RecipeHandler) BrowseRecipes(c *gin.Context) {
	var q types.BrowseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
		return
	}
	publicOnly := q.PublicOnly == nil || *q.PublicOnly

	page, err := h.recipes.Browse(c.Request.Context(), q.Page, q.Size, browseCriteria(q), publicOnly)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	recipes, err := h.recipes.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	recipe, err := h.recipes.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeView(*recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	req, err := bindRecipeRequest(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), p, req.Draft, req.Photos)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": types.NewRecipeView(*recipe)})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	id, err := recipeID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	req, err := bindRecipeRequest(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), id, p, req.Draft, req.Photos, req.KeepExisting)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": types.NewRecipeView(*recipe)})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	id, err := recipeID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id, p); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	id, err := recipeID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req types.RateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
		return
	}

	if err := h.recipes.Rate(c.Request.Context(), id, p.UserID, req.Value); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": req.Value})
}

func (h *RecipeHandler) GetUserRating(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	id, err := recipeID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	value, err := h.recipes.GetUserRating(c.Request.Context(), id, p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": value})
}

func (h *RecipeHandler) IsOwner(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	id, err := recipeID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	owns, err := h.recipes.IsOwner(c.Request.Context(), id, p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_owner": owns})
}

func (h *RecipeHandler) IsFavorite(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	id, err := recipeID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	fav, err := h.recipes.IsFavorite(c.Request.Context(), id, p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_favorite": fav})
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	id, err := recipeID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.recipes.AddFavorite(c.Request.Context(), id, p.UserID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_favorite": true})
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	id, err := recipeID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.recipes.RemoveFavorite(c.Request.Context(), id, p.UserID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_favorite": false})
}

func (h *RecipeHandler) ListOwnRecipes(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	recipes, err := h.recipes.ListOwned(c.Request.Context(), p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) ListFavorites(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	recipes, err := h.recipes.ListFavorites(c.Request.Context(), p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}
