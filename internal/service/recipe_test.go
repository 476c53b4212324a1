package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/auth"
	"github.com/pageza/cibaria/backend/internal/mocks"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/recipefilter"
	"github.com/pageza/cibaria/backend/internal/testhelpers"
	"github.com/pageza/cibaria/backend/internal/types"
)

type fixture struct {
	db    *gorm.DB
	store *mocks.MockImageStore
	svc   *RecipeService
	owner *models.User
	admin *models.User
	other *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	store := new(mocks.MockImageStore)
	t.Cleanup(func() { store.AssertExpectations(t) })

	return &fixture{
		db:    db,
		store: store,
		svc:   NewRecipeService(db, store),
		owner: testhelpers.CreateTestUser(t, db, "owner", models.RoleUser),
		admin: testhelpers.CreateTestUser(t, db, "admin", "USER,ADMIN"),
		other: testhelpers.CreateTestUser(t, db, "other", models.RoleUser),
	}
}

func (f *fixture) attachImage(t *testing.T, recipeID uint, storageID string) {
	t.Helper()
	id := recipeID
	img := models.Image{URL: "https://cdn/" + storageID, PublicID: storageID, ImageType: models.ImageTypeRecipe, RecipeID: &id}
	require.NoError(t, f.db.Create(&img).Error)
}

func (f *fixture) count(t *testing.T, model interface{}, recipeID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where("recipe_id = ?", recipeID).Count(&n).Error)
	return n
}

func sampleDraft() types.RecipeDraft {
	return types.RecipeDraft{
		Name:        "Bread",
		Difficulty:  2,
		PrepareTime: 90,
		Servings:    4,
		Category:    "baking",
		IsPublic:    true,
		Language:    "en",
		Ingredients: []types.IngredientDraft{
			{Name: "flour", Quantity: 0.5, Unit: "kg"},
			{Name: "mleko", Quantity: 200, Unit: "ml", Language: "pl"},
		},
		Steps: []string{"Mix.", "Knead.", "Bake."},
	}
}

func TestCanMutate(t *testing.T) {
	recipe := &models.Recipe{UserID: 1}

	tests := []struct {
		name string
		p    auth.Principal
		want bool
	}{
		{name: "owner", p: auth.Principal{UserID: 1, Roles: []string{"USER"}}, want: true},
		{name: "admin", p: auth.Principal{UserID: 2, Roles: []string{"USER", "ADMIN"}}, want: true},
		{name: "other user", p: auth.Principal{UserID: 2, Roles: []string{"USER"}}, want: false},
		{name: "no roles", p: auth.Principal{UserID: 3}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(recipe, tt.p))
		})
	}
}

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	photo := types.Photo{Filename: "bread.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}
	f.store.On("Upload", mock.Anything, photo).
		Return(types.StoredImage{StorageID: "recipe-images/1.jpg", URL: "https://cdn/1.jpg"}, nil).Once()

	recipe, err := f.svc.Create(ctx, testhelpers.PrincipalFor(f.owner), sampleDraft(), []types.Photo{photo})
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, recipe.UserID)
	require.Len(t, recipe.Images, 1)
	assert.Equal(t, "recipe-images/1.jpg", recipe.Images[0].PublicID)

	stored, err := f.svc.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, stored.Ingredients, 2)
	assert.Equal(t, "en", stored.Ingredients[0].Language, "ingredient without language inherits the recipe's")
	assert.Equal(t, "pl", stored.Ingredients[1].Language)
	require.Len(t, stored.Steps, 3)
	for i, step := range stored.Steps {
		assert.Equal(t, i, step.Position)
	}
	require.Len(t, stored.Images, 1)
	assert.Equal(t, models.ImageTypeRecipe, stored.Images[0].ImageType)
}

func TestCreatePrivateRecipe(t *testing.T) {
	f := newFixture(t)

	draft := sampleDraft()
	draft.IsPublic = false
	recipe, err := f.svc.Create(context.Background(), testhelpers.PrincipalFor(f.owner), draft, nil)
	require.NoError(t, err)

	stored, err := f.svc.GetByID(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPublic)
}

func TestCreateRecipeUploadFailure(t *testing.T) {
	f := newFixture(t)

	first := types.Photo{Filename: "a.png", ContentType: "image/png", Data: []byte("a")}
	second := types.Photo{Filename: "b.png", ContentType: "image/png", Data: []byte("b")}
	f.store.On("Upload", mock.Anything, first).Return(types.StoredImage{StorageID: "a", URL: "https://cdn/a"}, nil).Once()
	f.store.On("Upload", mock.Anything, second).Return(types.StoredImage{}, errors.New("bucket gone")).Once()
	f.store.On("Delete", mock.Anything, "a").Return(nil).Once()

	recipe, err := f.svc.Create(context.Background(), testhelpers.PrincipalFor(f.owner), sampleDraft(), []types.Photo{first, second})
	assert.Nil(t, recipe)
	assert.ErrorIs(t, err, apperr.ErrImage)
	assert.ErrorIs(t, err, apperr.ErrCollaborator)

	var n int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&n).Error)
	assert.Zero(t, n, "no recipe row is left behind")
}

func TestCreateRecipeErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.Create(ctx, auth.Principal{UserID: 999}, sampleDraft(), nil)
		assert.ErrorIs(t, err, apperr.ErrUserNotFound)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("invalid draft", func(t *testing.T) {
		draft := sampleDraft()
		draft.Name = ""
		_, err := f.svc.Create(ctx, testhelpers.PrincipalFor(f.owner), draft, nil)
		assert.ErrorIs(t, err, apperr.ErrInvalidRecipe)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("step too long", func(t *testing.T) {
		draft := sampleDraft()
		long := make([]byte, 257)
		for i := range long {
			long[i] = 'x'
		}
		draft.Steps = []string{string(long)}
		_, err := f.svc.Create(ctx, testhelpers.PrincipalFor(f.owner), draft, nil)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("photos without image store", func(t *testing.T) {
		svc := NewRecipeService(f.db, nil)
		_, err := svc.Create(ctx, testhelpers.PrincipalFor(f.owner), sampleDraft(), []types.Photo{{Filename: "x.png"}})
		assert.ErrorIs(t, err, apperr.ErrImage)
	})
}

func TestUpdateAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")

	t.Run("other user is rejected", func(t *testing.T) {
		_, err := f.svc.Update(ctx, recipe.ID, testhelpers.PrincipalFor(f.other), sampleDraft(), nil, true)
		assert.ErrorIs(t, err, apperr.ErrCannotEdit)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)

		stored, err := f.svc.GetByID(ctx, recipe.ID)
		require.NoError(t, err)
		assert.Equal(t, "Soup", stored.Name)
	})

	t.Run("owner succeeds", func(t *testing.T) {
		draft := sampleDraft()
		draft.Name = "Owner Soup"
		updated, err := f.svc.Update(ctx, recipe.ID, testhelpers.PrincipalFor(f.owner), draft, nil, true)
		require.NoError(t, err)
		assert.Equal(t, "Owner Soup", updated.Name)
	})

	t.Run("admin succeeds", func(t *testing.T) {
		draft := sampleDraft()
		draft.Name = "Admin Soup"
		updated, err := f.svc.Update(ctx, recipe.ID, testhelpers.PrincipalFor(f.admin), draft, nil, true)
		require.NoError(t, err)
		assert.Equal(t, "Admin Soup", updated.Name)
		assert.Equal(t, f.owner.ID, updated.UserID, "ownership does not move to the admin")
	})

	t.Run("missing recipe", func(t *testing.T) {
		_, err := f.svc.Update(ctx, 999, testhelpers.PrincipalFor(f.owner), sampleDraft(), nil, true)
		assert.ErrorIs(t, err, apperr.ErrRecipeNotFound)
	})

	t.Run("unknown caller", func(t *testing.T) {
		_, err := f.svc.Update(ctx, recipe.ID, auth.Principal{UserID: 999, Roles: []string{"ADMIN"}}, sampleDraft(), nil, true)
		assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	})
}

func TestUpdateReplacesCollections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")

	draft := sampleDraft()
	draft.Ingredients = []types.IngredientDraft{{Name: "water", Quantity: 1, Unit: "l"}}
	draft.Steps = []string{"Boil."}
	draft.IsPublic = false

	updated, err := f.svc.Update(ctx, recipe.ID, testhelpers.PrincipalFor(f.owner), draft, nil, true)
	require.NoError(t, err)

	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "water", updated.Ingredients[0].Name)
	require.Len(t, updated.Steps, 1)
	assert.Equal(t, "Boil.", updated.Steps[0].Content)
	assert.False(t, updated.IsPublic)

	assert.Equal(t, int64(1), f.count(t, &models.Ingredient{}, recipe.ID))
	assert.Equal(t, int64(1), f.count(t, &models.Step{}, recipe.ID))
}

func TestUpdateImages(t *testing.T) {
	ctx := context.Background()

	t.Run("keep existing", func(t *testing.T) {
		f := newFixture(t)
		recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")
		f.attachImage(t, recipe.ID, "old")

		updated, err := f.svc.Update(ctx, recipe.ID, testhelpers.PrincipalFor(f.owner), sampleDraft(), nil, true)
		require.NoError(t, err)
		require.Len(t, updated.Images, 1)
		assert.Equal(t, "old", updated.Images[0].PublicID)
		f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("drop existing", func(t *testing.T) {
		f := newFixture(t)
		recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")
		f.attachImage(t, recipe.ID, "old")
		f.store.On("Delete", mock.Anything, "old").Return(nil).Once()

		updated, err := f.svc.Update(ctx, recipe.ID, testhelpers.PrincipalFor(f.owner), sampleDraft(), nil, false)
		require.NoError(t, err)
		assert.Empty(t, updated.Images)
	})

	t.Run("new photos replace existing", func(t *testing.T) {
		f := newFixture(t)
		recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")
		f.attachImage(t, recipe.ID, "old")

		photo := types.Photo{Filename: "new.png", ContentType: "image/png", Data: []byte("n")}
		f.store.On("Upload", mock.Anything, photo).Return(types.StoredImage{StorageID: "new", URL: "https://cdn/new"}, nil).Once()
		f.store.On("Delete", mock.Anything, "old").Return(nil).Once()

		// keepExisting is ignored once new photos arrive.
		updated, err := f.svc.Update(ctx, recipe.ID, testhelpers.PrincipalFor(f.owner), sampleDraft(), []types.Photo{photo}, true)
		require.NoError(t, err)
		require.Len(t, updated.Images, 1)
		assert.Equal(t, "new", updated.Images[0].PublicID)
	})

	t.Run("cleanup failure is not fatal", func(t *testing.T) {
		f := newFixture(t)
		recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")
		f.attachImage(t, recipe.ID, "old")
		f.store.On("Delete", mock.Anything, "old").Return(errors.New("timeout")).Once()

		updated, err := f.svc.Update(ctx, recipe.ID, testhelpers.PrincipalFor(f.owner), sampleDraft(), nil, false)
		require.NoError(t, err)
		assert.Empty(t, updated.Images)
	})

	t.Run("upload failure keeps the recipe unchanged", func(t *testing.T) {
		f := newFixture(t)
		recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")
		f.attachImage(t, recipe.ID, "old")

		photo := types.Photo{Filename: "new.png"}
		f.store.On("Upload", mock.Anything, photo).Return(types.StoredImage{}, errors.New("denied")).Once()

		_, err := f.svc.Update(ctx, recipe.ID, testhelpers.PrincipalFor(f.owner), sampleDraft(), []types.Photo{photo}, false)
		assert.ErrorIs(t, err, apperr.ErrImage)

		stored, err := f.svc.GetByID(ctx, recipe.ID)
		require.NoError(t, err)
		assert.Equal(t, "Soup", stored.Name)
		require.Len(t, stored.Images, 1)
		assert.Equal(t, "old", stored.Images[0].PublicID)
	})
}

func TestDeleteRecipe(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades and detaches favorites", func(t *testing.T) {
		f := newFixture(t)
		recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")
		f.attachImage(t, recipe.ID, "photo")

		for _, u := range []*models.User{f.owner, f.admin, f.other} {
			require.NoError(t, f.svc.AddFavorite(ctx, recipe.ID, u.ID))
			require.NoError(t, f.svc.Rate(ctx, recipe.ID, u.ID, 4))
		}
		f.store.On("Delete", mock.Anything, "photo").Return(nil).Once()

		require.NoError(t, f.svc.Delete(ctx, recipe.ID, testhelpers.PrincipalFor(f.owner)))

		for _, u := range []*models.User{f.owner, f.admin, f.other} {
			fav, err := f.svc.IsFavorite(ctx, recipe.ID, u.ID)
			require.NoError(t, err)
			assert.False(t, fav)

			favorites, err := f.svc.ListFavorites(ctx, u.ID)
			require.NoError(t, err)
			assert.Empty(t, favorites)
		}
		for _, model := range []interface{}{&models.Ingredient{}, &models.Step{}, &models.Rating{}, &models.Image{}, &models.RecipeFavorite{}} {
			assert.Zero(t, f.count(t, model, recipe.ID), "%T rows remain", model)
		}

		_, err := f.svc.GetByID(ctx, recipe.ID)
		assert.ErrorIs(t, err, apperr.ErrRecipeNotFound)

		page, err := f.svc.Browse(ctx, 1, 10, recipefilter.Criteria{}, false)
		require.NoError(t, err)
		assert.Empty(t, page.Content)
	})

	t.Run("other user is rejected", func(t *testing.T) {
		f := newFixture(t)
		recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")

		err := f.svc.Delete(ctx, recipe.ID, testhelpers.PrincipalFor(f.other))
		assert.ErrorIs(t, err, apperr.ErrCannotDelete)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)

		_, err = f.svc.GetByID(ctx, recipe.ID)
		assert.NoError(t, err)
	})

	t.Run("admin succeeds and cleanup failure is swallowed", func(t *testing.T) {
		f := newFixture(t)
		recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")
		f.attachImage(t, recipe.ID, "photo")
		f.store.On("Delete", mock.Anything, "photo").Return(errors.New("unavailable")).Once()

		require.NoError(t, f.svc.Delete(ctx, recipe.ID, testhelpers.PrincipalFor(f.admin)))

		_, err := f.svc.GetByID(ctx, recipe.ID)
		assert.ErrorIs(t, err, apperr.ErrRecipeNotFound)
	})

	t.Run("missing recipe", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Delete(ctx, 999, testhelpers.PrincipalFor(f.owner))
		assert.ErrorIs(t, err, apperr.ErrRecipeNotFound)
	})
}

func TestIsOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, f.db, f.owner, "Soup")

	owns, err := f.svc.IsOwner(ctx, recipe.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = f.svc.IsOwner(ctx, recipe.ID, f.admin.ID)
	require.NoError(t, err)
	assert.False(t, owns, "admins are not owners")

	_, err = f.svc.IsOwner(ctx, 999, f.owner.ID)
	assert.ErrorIs(t, err, apperr.ErrRecipeNotFound)
}
