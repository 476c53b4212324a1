package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/models"
)

const (
	minRating = 1
	maxRating = 5
)

// Rate records the user's rating of a recipe, overwriting an earlier one.
// Owners may rate their own recipes.
func (s *RecipeService) Rate(ctx context.Context, recipeID, userID uint, value int) (err error) {
	defer func() { s.metrics.CatalogOp("rate", err) }()

	if value < minRating || value > maxRating {
		return apperr.ErrInvalidRating
	}
	if err := s.ensureRecipe(ctx, recipeID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, s.db, userID); err != nil {
		return err
	}

	rating := models.Rating{UserID: userID, RecipeID: recipeID, Value: value}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating_value", "updated_at"}),
	}).Create(&rating).Error
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}
	return nil
}

// GetUserRating returns the user's rating of the recipe, 0 when unrated.
func (s *RecipeService) GetUserRating(ctx context.Context, recipeID, userID uint) (int, error) {
	var rating models.Rating
	err := s.db.WithContext(ctx).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load rating: %w", err)
	}
	return rating.Value, nil
}
