package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crime-case-workers/internal/models"

	"github.com/jmoiron/sqlx"
)

var ErrCaseNotFound = errors.New("case not found")

const caseColumns = `id, case_number, title, description, crime_type, status, severity, location,
	primary_suspect, evidence_summary, date_reported, workflow_stage, reported_by, created_at, updated_at`

type CaseRepository struct {
	db *sqlx.DB
}

func NewCaseRepository(db *sqlx.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func (r *CaseRepository) GetByCaseNumber(ctx context.Context, caseNumber string) (*models.CaseRecord, error) {
	var c models.CaseRecord
	err := r.db.GetContext(ctx, &c, `SELECT `+caseColumns+` FROM cases WHERE case_number = $1`, caseNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("get case %s: %w", caseNumber, err)
	}
	return &c, nil
}

// ListByStage returns the newest cases in stage, at most limit rows.
func (r *CaseRepository) ListByStage(ctx context.Context, stage models.WorkflowStage, limit int) ([]models.CaseRecord, error) {
	cases := []models.CaseRecord{}
	err := r.db.SelectContext(ctx, &cases,
		`SELECT `+caseColumns+` FROM cases WHERE workflow_stage = $1 ORDER BY date_reported DESC LIMIT $2`,
		string(stage), limit)
	if err != nil {
		return nil, fmt.Errorf("list cases in %s: %w", stage, err)
	}
	return cases, nil
}
