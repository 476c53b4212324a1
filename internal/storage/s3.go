// Package storage holds the image store adapters used by the catalog.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pageza/cibaria/backend/config"
	"github.com/pageza/cibaria/backend/internal/types"
)

// Store uploads and deletes image objects.
type Store interface {
	Upload(ctx context.Context, photo types.Photo) (types.StoredImage, error)
	Delete(ctx context.Context, storageID string) error
}

// objectAPI is the subset of the S3 client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps recipe images in an S3 compatible bucket.
type S3Store struct {
	client    objectAPI
	bucket    string
	prefix    string
	publicURL string
	log       zerolog.Logger
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds a store on top of an initialised S3 config.
func NewS3Store(cfg *config.S3Config, log zerolog.Logger) *S3Store {
	return newS3Store(cfg.Client, cfg.BucketName, cfg.PublicURL, log)
}

func newS3Store(client objectAPI, bucket, publicURL string, log zerolog.Logger) *S3Store {
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Store{
		client:    client,
		bucket:    bucket,
		prefix:    "recipe-images",
		publicURL: strings.TrimSuffix(publicURL, "/"),
		log:       log.With().Str("component", "s3_store").Logger(),
	}
}

// Upload stores the photo under a fresh key and returns the key and its
// public URL.
func (s *S3Store) Upload(ctx context.Context, photo types.Photo) (types.StoredImage, error) {
	key := path.Join(s.prefix, uuid.New().String()+extension(photo))

	contentType := photo.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(photo.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return types.StoredImage{}, fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.log.Debug().Str("key", key).Int("bytes", len(photo.Data)).Msg("image uploaded")
	return types.StoredImage{StorageID: key, URL: s.publicURL + "/" + key}, nil
}

// Delete removes an object by key.
func (s *S3Store) Delete(ctx context.Context, storageID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func extension(photo types.Photo) string {
	if ext := strings.ToLower(path.Ext(photo.Filename)); ext != "" {
		return ext
	}
	switch photo.ContentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ""
}
