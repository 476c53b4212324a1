package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/pagination"
	"github.com/pageza/cibaria/backend/internal/recipefilter"
	"github.com/pageza/cibaria/backend/internal/types"
)

// Browse loads the catalog, optionally only public recipes, filters it and
// returns the requested page. TotalPages counts the filtered set.
//
// A filter that matches nothing yields an empty first page rather than an
// error; any other page past the end fails with apperr.ErrPageDoesNotExist.
func (s *RecipeService) Browse(ctx context.Context, page, size int, criteria recipefilter.Criteria, publicOnly bool) (_ *types.RecipePage, err error) {
	defer func() { s.metrics.CatalogOp("browse", err) }()

	if size <= 0 {
		return nil, apperr.ErrInvalidPageSize
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	query := preloadAll(s.db.WithContext(ctx)).Order("id")
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	filtered, err := recipefilter.Apply(criteria, recipes)
	if err != nil {
		return nil, err
	}
	totalPages, err := pagination.TotalPages(size, len(filtered))
	if err != nil {
		return nil, err
	}

	result := &types.RecipePage{Content: []types.RecipeView{}, Page: page, Size: size, TotalPages: totalPages}
	if len(filtered) == 0 && page == 1 {
		return result, nil
	}

	items, err := pagination.Paginate(page, size, filtered)
	if err != nil {
		return nil, err
	}
	for _, r := range items {
		result.Content = append(result.Content, types.NewRecipeView(r))
	}
	return result, nil
}

// Search matches the query as a case-insensitive substring of recipe names.
func (s *RecipeService) Search(ctx context.Context, query string) ([]types.RecipeSummary, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Images").
		Preload("Ratings").
		Where(`LOWER(recipe_name) LIKE ? ESCAPE '\'`, pattern).
		Order("id").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return summarize(recipes), nil
}

// ListAll returns every recipe, public or not.
func (s *RecipeService) ListAll(ctx context.Context) ([]types.RecipeSummary, error) {
	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Preload("Images").Preload("Ratings").Order("id").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return summarize(recipes), nil
}

// ListOwned returns the recipes created by the user.
func (s *RecipeService) ListOwned(ctx context.Context, userID uint) ([]types.RecipeSummary, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Images").
		Preload("Ratings").
		Where("user_id = ?", userID).
		Order("id").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user recipes: %w", err)
	}
	return summarize(recipes), nil
}

// Stats counts users and recipes for the admin dashboard.
func (s *RecipeService) Stats(ctx context.Context) (*types.CatalogStats, error) {
	db := s.db.WithContext(ctx)
	var stats types.CatalogStats

	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&stats.TotalUsers, &models.User{}, "", nil},
		{&stats.AdminUsers, &models.User{}, "role LIKE ?", []interface{}{"%" + models.RoleAdmin + "%"}},
		{&stats.TotalRecipes, &models.Recipe{}, "", nil},
		{&stats.PublicRecipes, &models.Recipe{}, "is_public = ?", []interface{}{true}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}
	stats.RegularUsers = stats.TotalUsers - stats.AdminUsers
	stats.PrivateRecipes = stats.TotalRecipes - stats.PublicRecipes
	return &stats, nil
}

func summarize(recipes []models.Recipe) []types.RecipeSummary {
	out := make([]types.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, types.NewRecipeSummary(r))
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
