package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-media-backend/internal/model"
)

// MockObjectStore is a testify mock of the object store used by services.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, key string, file model.LocalFile) (model.StoredObject, error) {
	args := m.Called(ctx, key, file)
	return args.Get(0).(model.StoredObject), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
