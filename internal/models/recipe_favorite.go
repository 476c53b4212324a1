package models

import "time"

// RecipeFavorite is one row of the user/recipe favorites relation.
type RecipeFavorite struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index" json:"recipe_id"`
}

func (RecipeFavorite) TableName() string {
	return "recipe_favorites"
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Recipe{},
		&Ingredient{},
		&Step{},
		&Image{},
		&Rating{},
		&RecipeFavorite{},
	}
}
