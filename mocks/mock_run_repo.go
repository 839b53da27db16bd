package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fundscope/internal/domain"
)

// MockAnalysisRunRepo is a mock implementation of port.AnalysisRunRepository.
type MockAnalysisRunRepo struct {
	mock.Mock
}

func (m *MockAnalysisRunRepo) Create(ctx context.Context, run *domain.AnalysisRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockAnalysisRunRepo) Update(ctx context.Context, run *domain.AnalysisRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockAnalysisRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisRun), args.Error(1)
}

func (m *MockAnalysisRunRepo) List(ctx context.Context, offset, limit int) ([]domain.AnalysisRun, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.AnalysisRun), args.Int(1), args.Error(2)
}
