package types

import (
	"github.com/pageza/cibaria/backend/internal/models"
)

// RecipeDraft is the caller-supplied content of a recipe on create and update.
type RecipeDraft struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Difficulty  int               `json:"difficulty" validate:"min=1,max=10"`
	PrepareTime int               `json:"prepare_time" validate:"min=0"`
	Servings    int               `json:"servings" validate:"min=1"`
	Category    string            `json:"category" validate:"max=50"`
	IsPublic    bool              `json:"is_public"`
	Language    string            `json:"language" validate:"max=10"`
	Ingredients []IngredientDraft `json:"ingredients" validate:"dive"`
	Steps       []string          `json:"steps" validate:"dive,required,max=256"`
}

type IngredientDraft struct {
	Name       string  `json:"name" validate:"required,max=100"`
	Quantity   float64 `json:"quantity" validate:"min=0"`
	Unit       string  `json:"unit" validate:"max=30"`
	IsOptional bool    `json:"is_optional"`
	// Language defaults to the recipe language when empty.
	Language string `json:"language" validate:"max=10"`
}

// Photo is an uploaded image before it reaches the image store.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StoredImage identifies an object held by the image store.
type StoredImage struct {
	StorageID string
	URL       string
}

// RecipeView is a recipe with its computed average rating.
type RecipeView struct {
	models.Recipe
	AvgRating    int `json:"avg_rating"`
	RatingsCount int `json:"ratings_count"`
}

func NewRecipeView(r models.Recipe) RecipeView {
	return RecipeView{Recipe: r, AvgRating: r.AverageRating(), RatingsCount: len(r.Ratings)}
}

// RecipeSummary is the list projection of a recipe.
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Difficulty  int    `json:"difficulty"`
	PrepareTime int    `json:"prepare_time"`
	Servings    int    `json:"servings"`
	IsPublic    bool   `json:"is_public"`
	Language    string `json:"language"`
	UserID      uint   `json:"user_id"`
	ImageURL    string `json:"image_url,omitempty"`
	AvgRating   int    `json:"avg_rating"`
}

func NewRecipeSummary(r models.Recipe) RecipeSummary {
	s := RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Difficulty:  r.Difficulty,
		PrepareTime: r.PrepareTime,
		Servings:    r.Servings,
		IsPublic:    r.IsPublic,
		Language:    r.Language,
		UserID:      r.UserID,
		AvgRating:   r.AverageRating(),
	}
	if len(r.Images) > 0 {
		s.ImageURL = r.Images[0].URL
	}
	return s
}

// RecipePage is one page of browse results.
type RecipePage struct {
	Content    []RecipeView `json:"content"`
	Page       int          `json:"page"`
	Size       int          `json:"size"`
	TotalPages int          `json:"total_pages"`
}

// CatalogStats are the administrator dashboard counters.
type CatalogStats struct {
	TotalUsers     int64 `json:"total_users"`
	AdminUsers     int64 `json:"admin_users"`
	RegularUsers   int64 `json:"regular_users"`
	TotalRecipes   int64 `json:"total_recipes"`
	PublicRecipes  int64 `json:"public_recipes"`
	PrivateRecipes int64 `json:"private_recipes"`
}
