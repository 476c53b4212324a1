package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/auth"
	"github.com/pageza/cibaria/backend/internal/metrics"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/types"
)

const defaultImageTimeout = 15 * time.Second

// RecipeService handles recipe operations
type RecipeService struct {
	db           *gorm.DB
	images       ImageStore
	validate     *validator.Validate
	log          zerolog.Logger
	metrics      *metrics.Metrics
	imageTimeout time.Duration
}

type Option func(*RecipeService)

func WithLogger(log zerolog.Logger) Option {
	return func(s *RecipeService) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RecipeService) { s.metrics = m }
}

// WithImageTimeout bounds every single image store call.
func WithImageTimeout(d time.Duration) Option {
	return func(s *RecipeService) {
		if d > 0 {
			s.imageTimeout = d
		}
	}
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore, opts ...Option) *RecipeService {
	s := &RecipeService{
		db:           db,
		images:       images,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		log:          zerolog.Nop(),
		imageTimeout: defaultImageTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "recipe_service").Logger()
	return s
}

// CanMutate reports whether the principal may edit or delete the recipe:
// owners and administrators only.
func CanMutate(recipe *models.Recipe, p auth.Principal) bool {
	return recipe.UserID == p.UserID || p.IsAdmin()
}

// Create stores a new recipe owned by the principal. Photos are uploaded
// first; if any upload fails nothing is persisted.
func (s *RecipeService) Create(ctx context.Context, p auth.Principal, draft types.RecipeDraft, photos []types.Photo) (_ *models.Recipe, err error) {
	defer func() { s.metrics.CatalogOp("create", err) }()

	if err := s.validateDraft(draft); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, s.db, p.UserID); err != nil {
		return nil, err
	}

	uploaded, err := s.uploadAll(ctx, photos)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{UserID: p.UserID}
	applyDraft(&recipe, draft)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		images, err := createImages(tx, recipe.ID, uploaded)
		if err != nil {
			return err
		}
		recipe.Images = images
		return nil
	})
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	s.log.Info().Uint("recipe_id", recipe.ID).Uint("user_id", p.UserID).Int("images", len(uploaded)).Msg("recipe created")
	return &recipe, nil
}

// GetByID returns a recipe with its ingredients, steps, images and ratings.
func (s *RecipeService) GetByID(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadAll(s.db.WithContext(ctx)).First(&recipe, recipeID).Error; err != nil {
		return nil, recipeLookupErr(err)
	}
	return &recipe, nil
}

// Update overwrites the recipe's scalar fields and replaces its ingredient
// and step lists. New photos replace every existing image. Without new
// photos the existing images are dropped unless keepExisting is set.
func (s *RecipeService) Update(ctx context.Context, recipeID uint, p auth.Principal, draft types.RecipeDraft, photos []types.Photo, keepExisting bool) (_ *models.Recipe, err error) {
	defer func() { s.metrics.CatalogOp("update", err) }()

	if err := s.validateDraft(draft); err != nil {
		return nil, err
	}

	recipe, err := s.loadForMutation(ctx, recipeID, p, apperr.ErrCannotEdit)
	if err != nil {
		return nil, err
	}

	uploaded, err := s.uploadAll(ctx, photos)
	if err != nil {
		return nil, err
	}
	replaceImages := len(photos) > 0 || !keepExisting

	next := models.Recipe{ID: recipe.ID, UserID: recipe.UserID}
	applyDraft(&next, draft)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Recipe{ID: recipe.ID}).Updates(map[string]interface{}{
			"recipe_name":  next.Name,
			"difficulty":   next.Difficulty,
			"prepare_time": next.PrepareTime,
			"servings":     next.Servings,
			"category":     next.Category,
			"is_public":    next.IsPublic,
			"language":     next.Language,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Ingredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear ingredients: %w", err)
		}
		if len(next.Ingredients) > 0 {
			for i := range next.Ingredients {
				next.Ingredients[i].RecipeID = recipe.ID
			}
			if err := tx.Create(&next.Ingredients).Error; err != nil {
				return fmt.Errorf("failed to store ingredients: %w", err)
			}
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Step{}).Error; err != nil {
			return fmt.Errorf("failed to clear steps: %w", err)
		}
		if len(next.Steps) > 0 {
			for i := range next.Steps {
				next.Steps[i].RecipeID = recipe.ID
			}
			if err := tx.Create(&next.Steps).Error; err != nil {
				return fmt.Errorf("failed to store steps: %w", err)
			}
		}

		if replaceImages {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Image{}).Error; err != nil {
				return fmt.Errorf("failed to clear images: %w", err)
			}
			if _, err := createImages(tx, recipe.ID, uploaded); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	if replaceImages {
		s.discard(ctx, storedImages(recipe.Images))
	}

	s.log.Info().Uint("recipe_id", recipe.ID).Uint("user_id", p.UserID).Bool("images_replaced", replaceImages).Msg("recipe updated")
	return s.GetByID(ctx, recipe.ID)
}

// Delete removes the recipe together with its ingredients, steps, ratings,
// images and favorites.
func (s *RecipeService) Delete(ctx context.Context, recipeID uint, p auth.Principal) (err error) {
	defer func() { s.metrics.CatalogOp("delete", err) }()

	recipe, err := s.loadForMutation(ctx, recipeID, p, apperr.ErrCannotDelete)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []interface{}{
			&models.RecipeFavorite{},
			&models.Rating{},
			&models.Ingredient{},
			&models.Step{},
			&models.Image{},
		}
		for _, child := range children {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete %T rows: %w", child, err)
			}
		}
		if err := tx.Delete(&models.Recipe{}, recipe.ID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discard(ctx, storedImages(recipe.Images))
	s.log.Info().Uint("recipe_id", recipe.ID).Uint("user_id", p.UserID).Msg("recipe deleted")
	return nil
}

// IsOwner reports whether the user owns the recipe.
func (s *RecipeService) IsOwner(ctx context.Context, recipeID, userID uint) (bool, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id", "user_id").First(&recipe, recipeID).Error; err != nil {
		return false, recipeLookupErr(err)
	}
	return recipe.UserID == userID, nil
}

// loadForMutation loads the recipe and its images, resolves the caller and
// applies the owner-or-admin gate.
func (s *RecipeService) loadForMutation(ctx context.Context, recipeID uint, p auth.Principal, denied error) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.Preload("Images").First(&recipe, recipeID).Error; err != nil {
		return nil, recipeLookupErr(err)
	}
	if err := s.ensureUser(ctx, db, p.UserID); err != nil {
		return nil, err
	}
	if !CanMutate(&recipe, p) {
		s.log.Warn().Uint("recipe_id", recipeID).Uint("user_id", p.UserID).Msg("mutation denied")
		return nil, denied
	}
	return &recipe, nil
}

func (s *RecipeService) ensureUser(ctx context.Context, db *gorm.DB, userID uint) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if count == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

func (s *RecipeService) ensureRecipe(ctx context.Context, recipeID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up recipe: %w", err)
	}
	if count == 0 {
		return apperr.ErrRecipeNotFound
	}
	return nil
}

func (s *RecipeService) validateDraft(draft types.RecipeDraft) error {
	if err := s.validate.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", apperr.ErrInvalidRecipe, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", apperr.ErrInvalidRecipe, err)
	}
	return nil
}

// applyDraft copies the draft onto recipe, building fresh ingredient and
// step lists. Ingredients without a language take the recipe's.
func applyDraft(recipe *models.Recipe, draft types.RecipeDraft) {
	recipe.Name = strings.TrimSpace(draft.Name)
	recipe.Difficulty = draft.Difficulty
	recipe.PrepareTime = draft.PrepareTime
	recipe.Servings = draft.Servings
	recipe.Category = draft.Category
	recipe.IsPublic = draft.IsPublic
	recipe.Language = draft.Language

	ingredients := make([]models.Ingredient, 0, len(draft.Ingredients))
	for _, d := range draft.Ingredients {
		lang := d.Language
		if lang == "" {
			lang = draft.Language
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:       strings.TrimSpace(d.Name),
			Quantity:   d.Quantity,
			Unit:       d.Unit,
			IsOptional: d.IsOptional,
			Language:   lang,
		})
	}
	recipe.Ingredients = ingredients

	steps := make([]models.Step, 0, len(draft.Steps))
	for i, content := range draft.Steps {
		steps = append(steps, models.Step{Position: i, Content: content})
	}
	recipe.Steps = steps
}

func preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Ratings")
}

func recipeLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrRecipeNotFound
	}
	return fmt.Errorf("failed to load recipe: %w", err)
}

// isUniqueViolation recognises unique constraint errors from postgres
// (lib/pq) and sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
