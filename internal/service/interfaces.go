package service

import (
	"context"

	"github.com/pageza/cibaria/backend/internal/auth"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/recipefilter"
	"github.com/pageza/cibaria/backend/internal/types"
)

// ImageStore is the image lifecycle collaborator.
type ImageStore interface {
	Upload(ctx context.Context, photo types.Photo) (types.StoredImage, error)
	Delete(ctx context.Context, storageID string) error
}

// IRecipeService defines the catalog operations exposed to the HTTP layer.
type IRecipeService interface {
	Create(ctx context.Context, p auth.Principal, draft types.RecipeDraft, photos []types.Photo) (*models.Recipe, error)
	GetByID(ctx context.Context, recipeID uint) (*models.Recipe, error)
	Update(ctx context.Context, recipeID uint, p auth.Principal, draft types.RecipeDraft, photos []types.Photo, keepExisting bool) (*models.Recipe, error)
	Delete(ctx context.Context, recipeID uint, p auth.Principal) error

	Browse(ctx context.Context, page, size int, criteria recipefilter.Criteria, publicOnly bool) (*types.RecipePage, error)
	Search(ctx context.Context, query string) ([]types.RecipeSummary, error)
	ListAll(ctx context.Context) ([]types.RecipeSummary, error)
	ListOwned(ctx context.Context, userID uint) ([]types.RecipeSummary, error)
	ListFavorites(ctx context.Context, userID uint) ([]types.RecipeSummary, error)

	Rate(ctx context.Context, recipeID, userID uint, value int) error
	GetUserRating(ctx context.Context, recipeID, userID uint) (int, error)

	AddFavorite(ctx context.Context, recipeID, userID uint) error
	RemoveFavorite(ctx context.Context, recipeID, userID uint) error
	IsFavorite(ctx context.Context, recipeID, userID uint) (bool, error)
	IsOwner(ctx context.Context, recipeID, userID uint) (bool, error)

	Stats(ctx context.Context) (*types.CatalogStats, error)
}

var _ IRecipeService = (*RecipeService)(nil)
