package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fundscope/internal/domain"
)

// MockContactFinder is a mock implementation of port.ContactFinder.
type MockContactFinder struct {
	mock.Mock
}

func (m *MockContactFinder) FindContact(ctx context.Context, name string, companies []string) (*domain.ContactProfile, error) {
	args := m.Called(ctx, name, companies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactProfile), args.Error(1)
}
