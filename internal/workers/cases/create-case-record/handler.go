package createcaserecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "crime-case-workers/internal/common/errors"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/common/metrics"
	"crime-case-workers/internal/models"
	"crime-case-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "create-case-record"

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrQueryFailed          = errors.New("QUERY_EXECUTION_FAILED")
	ErrDuplicateCase        = errors.New("DUPLICATE_CASE")
	ErrInvalidCase          = errors.New("CASE_VALIDATION_FAILED")
)

type Handler struct {
	config     *Config
	db         *sql.DB
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job, apperrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, h.toStandardError(err, &input))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) toStandardError(err error, input *Input) error {
	switch {
	case errors.Is(err, ErrDuplicateCase):
		return apperrors.NewDuplicateCaseError(input.CaseData.CaseNumber)
	case errors.Is(err, ErrInvalidCase):
		return apperrors.NewCaseValidationFailedError(err.Error())
	case errors.Is(err, ErrQueryFailed):
		return apperrors.NewQueryExecutionFailedError("duplicate_check", err)
	default:
		return apperrors.NewDatabaseInsertFailedError(err)
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	data := input.CaseData
	caseNumber := strings.TrimSpace(data.CaseNumber)
	if caseNumber == "" {
		return nil, fmt.Errorf("%w: case_number is required", ErrInvalidCase)
	}

	dateReported, err := time.Parse(models.DateLayout, data.DateReported)
	if err != nil {
		return nil, fmt.Errorf("%w: date_reported %q is not YYYY-MM-DD", ErrInvalidCase, data.DateReported)
	}

	var exists bool
	err = h.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM cases WHERE case_number = $1)`,
		caseNumber).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check: %v", ErrQueryFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCase, caseNumber)
	}

	caseID := uuid.New().String()
	now := h.now()

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO cases (
			id, case_number, title, description, crime_type, status, severity, location,
			primary_suspect, evidence_summary, date_reported, workflow_stage, reported_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`,
		caseID,
		caseNumber,
		data.Title,
		data.Description,
		data.CrimeType,
		data.Status,
		data.Severity,
		data.Location,
		data.PrimarySuspect,
		data.EvidenceSummary,
		dateReported,
		string(models.StagePendingReview),
		input.ReportedBy,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	createdAt := now.Format(time.RFC3339)

	err = repository.InsertAudit(ctx, h.db, models.AuditEntry{
		EventType:    "case_created",
		ResourceType: "case",
		ResourceID:   caseID,
		Details: map[string]interface{}{
			"caseNumber": caseNumber,
			"crimeType":  data.CrimeType,
			"severity":   data.Severity,
			"reportedBy": input.ReportedBy,
		},
		CreatedAt: createdAt,
	})
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":  err,
			"caseId": caseID,
		})
	}

	h.logger.Info("case record created", map[string]interface{}{
		"caseId":     caseID,
		"caseNumber": caseNumber,
		"crimeType":  data.CrimeType,
		"severity":   data.Severity,
	})

	return &Output{
		CaseID:        caseID,
		CaseNumber:    caseNumber,
		WorkflowStage: string(models.StagePendingReview),
		CreatedAt:     createdAt,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
