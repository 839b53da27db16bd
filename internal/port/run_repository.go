package port

import (
	"context"

	"github.com/google/uuid"

	"fundscope/internal/domain"
)

// AnalysisRunRepository persists run records so results survive workspace
// cleanup.
type AnalysisRunRepository interface {
	Create(ctx context.Context, run *domain.AnalysisRun) error
	Update(ctx context.Context, run *domain.AnalysisRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRun, error)
	List(ctx context.Context, offset, limit int) ([]domain.AnalysisRun, int, error)
}
