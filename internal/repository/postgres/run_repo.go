package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fundscope/internal/domain"
	"fundscope/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed AnalysisRunRepository.
func NewRunRepo(db *sqlx.DB) port.AnalysisRunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.AnalysisRun) error {
	query := `INSERT INTO analysis_runs
		(id, root_path, status, fund_count, excel_key, doc_key, error_msg, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.RootPath, run.Status, run.FundCount, run.ExcelKey,
		run.DocKey, run.ErrorMsg, run.StartedAt, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) Update(ctx context.Context, run *domain.AnalysisRun) error {
	query := `UPDATE analysis_runs SET
		status = $2, fund_count = $3, excel_key = $4, doc_key = $5,
		error_msg = $6, completed_at = $7
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		run.ID, run.Status, run.FundCount, run.ExcelKey, run.DocKey,
		run.ErrorMsg, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("runRepo.Update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("runRepo.Update rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRun, error) {
	var run domain.AnalysisRun
	err := r.db.GetContext(ctx, &run, "SELECT * FROM analysis_runs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) List(ctx context.Context, offset, limit int) ([]domain.AnalysisRun, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM analysis_runs"); err != nil {
		return nil, 0, fmt.Errorf("runRepo.List count: %w", err)
	}

	var runs []domain.AnalysisRun
	err := r.db.SelectContext(ctx, &runs,
		`SELECT * FROM analysis_runs
		 ORDER BY started_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List: %w", err)
	}
	return runs, total, nil
}
