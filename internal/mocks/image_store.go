package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/cibaria/backend/internal/types"
)

// MockImageStore is a mock image lifecycle collaborator
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, photo types.Photo) (types.StoredImage, error) {
	args := m.Called(ctx, photo)
	return args.Get(0).(types.StoredImage), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, storageID string) error {
	args := m.Called(ctx, storageID)
	return args.Error(0)
}
