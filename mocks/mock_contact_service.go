package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fundscope/internal/domain"
)

// MockContactService is a mock implementation of service.ContactService.
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Search(ctx context.Context, name string, companies []string) (*domain.ContactProfile, error) {
	args := m.Called(ctx, name, companies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactProfile), args.Error(1)
}
