package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/cibaria/backend/internal/auth"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/recipefilter"
	"github.com/pageza/cibaria/backend/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, p auth.Principal, draft types.RecipeDraft, photos []types.Photo) (*models.Recipe, error) {
	args := m.Called(ctx, p, draft, photos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetByID(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, recipeID uint, p auth.Principal, draft types.RecipeDraft, photos []types.Photo, keepExisting bool) (*models.Recipe, error) {
	args := m.Called(ctx, recipeID, p, draft, photos, keepExisting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, recipeID uint, p auth.Principal) error {
	args := m.Called(ctx, recipeID, p)
	return args.Error(0)
}

func (m *MockRecipeService) Browse(ctx context.Context, page, size int, criteria recipefilter.Criteria, publicOnly bool) (*types.RecipePage, error) {
	args := m.Called(ctx, page, size, criteria, publicOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipePage), args.Error(1)
}

func (m *MockRecipeService) Search(ctx context.Context, query string) ([]types.RecipeSummary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeSummary), args.Error(1)
}

func (m *MockRecipeService) ListAll(ctx context.Context) ([]types.RecipeSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeSummary), args.Error(1)
}

func (m *MockRecipeService) ListOwned(ctx context.Context, userID uint) ([]types.RecipeSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeSummary), args.Error(1)
}

func (m *MockRecipeService) ListFavorites(ctx context.Context, userID uint) ([]types.RecipeSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeSummary), args.Error(1)
}

func (m *MockRecipeService) Rate(ctx context.Context, recipeID, userID uint, value int) error {
	args := m.Called(ctx, recipeID, userID, value)
	return args.Error(0)
}

func (m *MockRecipeService) GetUserRating(ctx context.Context, recipeID, userID uint) (int, error) {
	args := m.Called(ctx, recipeID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRecipeService) AddFavorite(ctx context.Context, recipeID, userID uint) error {
	args := m.Called(ctx, recipeID, userID)
	return args.Error(0)
}

func (m *MockRecipeService) RemoveFavorite(ctx context.Context, recipeID, userID uint) error {
	args := m.Called(ctx, recipeID, userID)
	return args.Error(0)
}

func (m *MockRecipeService) IsFavorite(ctx context.Context, recipeID, userID uint) (bool, error) {
	args := m.Called(ctx, recipeID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeService) IsOwner(ctx context.Context, recipeID, userID uint) (bool, error) {
	args := m.Called(ctx, recipeID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeService) Stats(ctx context.Context) (*types.CatalogStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CatalogStats), args.Error(1)
}
