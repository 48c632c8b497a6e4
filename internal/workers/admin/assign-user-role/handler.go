package assignuserrole

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
)

const TaskType = "assign-user-role"

var (
	ErrInvalidRole          = errors.New("INVALID_ROLE")
	ErrInvalidInput         = errors.New("INVALID_INPUT")
	ErrDatabaseUpdateFailed = errors.New("DATABASE_UPDATE_FAILED")
)

// a user holds exactly one role; reassigning replaces it
const upsertRoleSQL = `
		INSERT INTO user_roles (user_id, role, assigned_by, assigned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET role = EXCLUDED.role,
			assigned_by = EXCLUDED.assigned_by,
			assigned_at = EXCLUDED.assigned_at`

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
		h.errHandler.HandleJobError(ctx, client, job, toStandardError(err, &input))
		return
	}

	h.completeJob(client, job, output)
}

func toStandardError(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidRole):
		return apperrors.NewInvalidRoleError(input.Role)
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError("userId", "required")
	default:
		return apperrors.NewDatabaseUpdateFailedError(err)
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	role := models.Role(strings.ToLower(strings.TrimSpace(input.Role)))
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, input.Role)
	}
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	assignment := models.UserRole{
		UserID:     input.UserID,
		Role:       role,
		AssignedBy: input.AssignedBy,
		AssignedAt: h.now(),
	}

	_, err := h.db.ExecContext(ctx, upsertRoleSQL,
		assignment.UserID,
		string(assignment.Role),
		assignment.AssignedBy,
		assignment.AssignedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseUpdateFailed, err)
	}

	assignedAt := assignment.AssignedAt.Format(time.RFC3339)

	err = repository.InsertAudit(ctx, h.db, models.AuditEntry{
		EventType:    "role_assigned",
		ResourceType: "user",
		ResourceID:   assignment.UserID,
		Details: map[string]interface{}{
			"role":       string(role),
			"assignedBy": assignment.AssignedBy,
		},
		CreatedAt: assignedAt,
	})
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":  err,
			"userId": assignment.UserID,
		})
	}

	h.logger.Info("role assigned", map[string]interface{}{
		"userId":     assignment.UserID,
		"role":       role,
		"assignedBy": assignment.AssignedBy,
	})

	return &Output{
		UserID:     assignment.UserID,
		Role:       string(role),
		AssignedAt: assignedAt,
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
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
