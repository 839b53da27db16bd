package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fundscope/internal/domain"
)

// MockFileStore is a mock implementation of port.FileStore.
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) ListTree(ctx context.Context) (*domain.FolderNode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FolderNode), args.Error(1)
}

func (m *MockFileStore) Download(ctx context.Context, relativePath string) ([]byte, error) {
	args := m.Called(ctx, relativePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
