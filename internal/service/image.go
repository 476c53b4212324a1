package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/types"
)

// uploadAll pushes every photo to the image store, each call bounded by the
// image timeout. On the first failure the photos already uploaded are
// removed again and an apperr.ErrImage is returned.
func (s *RecipeService) uploadAll(ctx context.Context, photos []types.Photo) ([]types.StoredImage, error) {
	if len(photos) == 0 {
		return nil, nil
	}
	if s.images == nil {
		return nil, fmt.Errorf("%w: no image store configured", apperr.ErrImage)
	}

	uploaded := make([]types.StoredImage, 0, len(photos))
	for _, photo := range photos {
		callCtx, cancel := context.WithTimeout(ctx, s.imageTimeout)
		img, err := s.images.Upload(callCtx, photo)
		cancel()
		s.metrics.ImageOp("upload", err)
		if err != nil {
			s.log.Error().Err(err).Str("filename", photo.Filename).Msg("image upload failed")
			s.discard(ctx, uploaded)
			return nil, fmt.Errorf("%w: upload %q: %w", apperr.ErrImage, photo.Filename, err)
		}
		uploaded = append(uploaded, img)
	}
	return uploaded, nil
}

// discard deletes images from the store, logging and swallowing failures.
// It keeps going after the request context is cancelled.
func (s *RecipeService) discard(ctx context.Context, images []types.StoredImage) {
	if s.images == nil || len(images) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, img := range images {
		callCtx, cancel := context.WithTimeout(ctx, s.imageTimeout)
		err := s.images.Delete(callCtx, img.StorageID)
		cancel()
		s.metrics.ImageOp("delete", err)
		if err != nil {
			s.metrics.ImageCleanupFailure()
			s.log.Warn().Err(err).Str("storage_id", img.StorageID).Msg("failed to delete image, skipping")
		}
	}
}

func createImages(tx *gorm.DB, recipeID uint, uploaded []types.StoredImage) ([]models.Image, error) {
	if len(uploaded) == 0 {
		return nil, nil
	}
	images := make([]models.Image, 0, len(uploaded))
	for _, up := range uploaded {
		id := recipeID
		images = append(images, models.Image{
			URL:       up.URL,
			PublicID:  up.StorageID,
			ImageType: models.ImageTypeRecipe,
			RecipeID:  &id,
		})
	}
	if err := tx.Create(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to store images: %w", err)
	}
	return images, nil
}

func storedImages(images []models.Image) []types.StoredImage {
	out := make([]types.StoredImage, 0, len(images))
	for _, img := range images {
		out = append(out, types.StoredImage{StorageID: img.PublicID, URL: img.URL})
	}
	return out
}
