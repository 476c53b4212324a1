package models

import (
	"time"
)

type Recipe struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"column:recipe_name;size:255;not null;index" json:"name"`
	Difficulty  int       `gorm:"not null" json:"difficulty"`
	PrepareTime int       `gorm:"not null" json:"prepare_time"`
	Servings    int       `gorm:"not null" json:"servings"`
	Category    string    `gorm:"size:50;index" json:"category"`
	IsPublic    bool      `gorm:"not null" json:"is_public"`
	Language    string    `gorm:"size:10" json:"language"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`

	Ingredients []Ingredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
	Steps       []Step       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"steps"`
	Images      []Image      `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"images"`
	Ratings     []Rating     `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

type Ingredient struct {
	ID         uint    `gorm:"primarykey" json:"id"`
	RecipeID   uint    `gorm:"not null;index" json:"-"`
	Name       string  `gorm:"size:100;not null" json:"name"`
	Quantity   float64 `gorm:"not null" json:"quantity"`
	Unit       string  `gorm:"size:30" json:"unit"`
	IsOptional bool    `gorm:"not null;default:false" json:"is_optional"`
	Language   string  `gorm:"size:10" json:"language"`
}

// Step positions are zero-based and define the instruction order.
type Step struct {
	ID       uint   `gorm:"primarykey" json:"-"`
	RecipeID uint   `gorm:"not null;index" json:"-"`
	Position int    `gorm:"not null" json:"position"`
	Content  string `gorm:"size:256;not null" json:"content"`
}

// AverageRating is the rounded mean of the recipe's ratings, 0 without any.
// Ratings must be loaded.
func (r Recipe) AverageRating() int {
	if len(r.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, rt := range r.Ratings {
		sum += rt.Value
	}
	// Round half up, values are positive.
	return (2*sum + len(r.Ratings)) / (2 * len(r.Ratings))
}
