package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type ImageType string

const (
	ImageTypeRecipe            ImageType = "RECIPE"
	ImageTypeProfilePicture    ImageType = "PROFILE_PICTURE"
	ImageTypeBackgroundPicture ImageType = "BACKGROUND_PICTURE"
)

// ErrImageOwner is returned when an image is attached to both or neither of
// a recipe and a user.
var ErrImageOwner = errors.New("image must belong to exactly one recipe or user")

type Image struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"-"`
	URL       string    `gorm:"column:image_url;size:512;not null" json:"url"`
	PublicID  string    `gorm:"size:255;not null;index" json:"-"`
	ImageType ImageType `gorm:"size:30;not null" json:"type"`
	RecipeID  *uint     `gorm:"index" json:"-"`
	UserID    *uint     `gorm:"index" json:"-"`
}

func (i *Image) BeforeSave(tx *gorm.DB) error {
	if (i.RecipeID == nil) == (i.UserID == nil) {
		return ErrImageOwner
	}
	return nil
}
