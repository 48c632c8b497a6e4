package advanceworkflowstage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crime-case-workers/internal/common/database"
	apperrors "crime-case-workers/internal/common/errors"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/common/metrics"
	"crime-case-workers/internal/models"
	"crime-case-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "advance-workflow-stage"

var (
	ErrCaseNotFound           = errors.New("CASE_NOT_FOUND")
	ErrInvalidStageTransition = errors.New("INVALID_STAGE_TRANSITION")
	ErrDatabaseUpdateFailed   = errors.New("DATABASE_UPDATE_FAILED")
	ErrCaseIndexingFailed     = errors.New("CASE_INDEXING_FAILED")
)

// Indexer makes a published case searchable. *database.ElasticsearchClient
// satisfies it.
type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc map[string]interface{}) error
}

type Handler struct {
	config     *Config
	db         *sql.DB
	indexer    Indexer
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, db *sql.DB, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		indexer:    indexer,
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
	case errors.Is(err, ErrCaseNotFound):
		return apperrors.NewCaseNotFoundError(input.CaseNumber)
	case errors.Is(err, ErrInvalidStageTransition):
		var te *transitionError
		if errors.As(err, &te) {
			return apperrors.NewInvalidStageTransitionError(string(te.from), string(te.to))
		}
		return apperrors.NewInvalidStageTransitionError("", input.TargetStage)
	case errors.Is(err, ErrCaseIndexingFailed):
		return apperrors.NewCaseIndexingFailedError(input.CaseNumber, err)
	default:
		return apperrors.NewDatabaseUpdateFailedError(err)
	}
}

type transitionError struct {
	from, to models.WorkflowStage
}

func (e *transitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidStageTransition, e.from, e.to)
}

func (e *transitionError) Unwrap() error { return ErrInvalidStageTransition }

const selectForUpdateSQL = `
		SELECT id, case_number, title, description, crime_type, status, severity, location,
			primary_suspect, evidence_summary, date_reported, workflow_stage, reported_by,
			created_at, updated_at
		FROM cases
		WHERE case_number = $1
		FOR UPDATE`

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	target := models.WorkflowStage(input.TargetStage)
	if !target.IsValid() {
		return nil, &transitionError{to: target}
	}

	var (
		record   models.CaseRecord
		previous models.WorkflowStage
		changed  bool
	)
	now := h.now()

	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, selectForUpdateSQL, input.CaseNumber).Scan(
			&record.ID,
			&record.CaseNumber,
			&record.Title,
			&record.Description,
			&record.CrimeType,
			&record.Status,
			&record.Severity,
			&record.Location,
			&record.PrimarySuspect,
			&record.EvidenceSummary,
			&record.DateReported,
			&record.WorkflowStage,
			&record.ReportedBy,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrCaseNotFound, input.CaseNumber)
		}
		if err != nil {
			return fmt.Errorf("%w: select case: %v", ErrDatabaseUpdateFailed, err)
		}

		previous = record.WorkflowStage
		// a retried job finds the stage already applied
		if previous == target {
			return nil
		}
		if !previous.CanTransition(target) {
			return &transitionError{from: previous, to: target}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE cases SET workflow_stage = $1, updated_at = $2 WHERE id = $3`,
			string(target), now, record.ID)
		if err != nil {
			return fmt.Errorf("%w: update stage: %v", ErrDatabaseUpdateFailed, err)
		}

		details := map[string]interface{}{
			"caseNumber": record.CaseNumber,
			"from":       string(previous),
			"to":         string(target),
			"actorId":    input.ActorID,
		}
		if input.Comment != "" {
			details["comment"] = input.Comment
		}
		err = repository.InsertAudit(ctx, tx, models.AuditEntry{
			EventType:    "case_stage_changed",
			ResourceType: "case",
			ResourceID:   record.ID,
			Details:      details,
			CreatedAt:    now.Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("%w: audit log: %v", ErrDatabaseUpdateFailed, err)
		}

		record.WorkflowStage = target
		record.UpdatedAt = now
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	output := &Output{
		CaseNumber:    record.CaseNumber,
		PreviousStage: string(previous),
		WorkflowStage: string(record.WorkflowStage),
		Severity:      string(record.Severity),
		ReportedBy:    record.ReportedBy,
		Changed:       changed,
		UpdatedAt:     record.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if record.WorkflowStage == models.StagePublished {
		if h.indexer == nil {
			return nil, fmt.Errorf("%w: no search indexer configured", ErrCaseIndexingFailed)
		}
		if err := h.indexer.IndexDocument(ctx, h.config.CaseIndex, record.CaseNumber, record.SearchDocument()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCaseIndexingFailed, err)
		}
		output.Indexed = true
	}

	h.logger.Info("workflow stage advanced", map[string]interface{}{
		"caseNumber": record.CaseNumber,
		"from":       previous,
		"to":         record.WorkflowStage,
		"changed":    changed,
		"indexed":    output.Indexed,
	})

	return output, nil
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
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
