package service

import (
	"context"
	"fmt"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/types"
)

// AddFavorite adds the recipe to the user's favorites. Adding it twice
// fails with apperr.ErrAlreadyFavorite.
func (s *RecipeService) AddFavorite(ctx context.Context, recipeID, userID uint) (err error) {
	defer func() { s.metrics.CatalogOp("favorite_add", err) }()

	if err := s.ensureRecipe(ctx, recipeID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, s.db, userID); err != nil {
		return err
	}

	exists, err := s.IsFavorite(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.ErrAlreadyFavorite
	}

	fav := models.RecipeFavorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyFavorite
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite removes the recipe from the user's favorites. Removing a
// recipe that is not a favorite fails with apperr.ErrNotFavorite.
func (s *RecipeService) RemoveFavorite(ctx context.Context, recipeID, userID uint) (err error) {
	defer func() { s.metrics.CatalogOp("favorite_remove", err) }()

	if err := s.ensureRecipe(ctx, recipeID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.RecipeFavorite{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFavorite
	}
	return nil
}

// IsFavorite reports whether the user has favorited the recipe.
func (s *RecipeService) IsFavorite(ctx context.Context, recipeID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RecipeFavorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// ListFavorites returns the user's favorite recipes, most recently added first.
func (s *RecipeService) ListFavorites(ctx context.Context, userID uint) ([]types.RecipeSummary, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Images").
		Preload("Ratings").
		Joins("JOIN recipe_favorites ON recipe_favorites.recipe_id = recipes.id").
		Where("recipe_favorites.user_id = ?", userID).
		Order("recipe_favorites.id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return summarize(recipes), nil
}
