package models

import "time"

type Rating struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rating_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_rating_user_recipe;index" json:"recipe_id"`
	Value     int       `gorm:"column:rating_value;not null;check:rating_value >= 1 AND rating_value <= 5" json:"value"`
}
