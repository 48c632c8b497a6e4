package validatecaserecord

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "crime-case-workers/internal/common/errors"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/common/metrics"
	"crime-case-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "validate-case-record"

var (
	ErrCaseValidationFailed = errors.New("CASE_VALIDATION_FAILED")
)

type Handler struct {
	config     *Config
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
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
		h.errHandler.HandleJobError(ctx, client, job, apperrors.NewCaseValidationFailedError(err.Error()))
		return
	}

	h.completeJob(client, job, output)
}

// execute reports field problems in the output; an error means the schema
// itself could not be evaluated.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	data := input.CaseData
	if data == nil {
		data = map[string]interface{}{}
	}

	result, err := validation.Validate(caseSchema, data)
	if err != nil {
		return nil, errors.Join(ErrCaseValidationFailed, err)
	}

	output := &Output{
		IsValid: result.Valid,
		Errors:  result.Errors,
	}
	if output.Errors == nil {
		output.Errors = []validation.ValidationError{}
	}

	if output.IsValid {
		h.logger.Info("case record is valid", map[string]interface{}{
			"caseNumber": data["case_number"],
		})
	} else {
		h.logger.Warn("case record failed validation", map[string]interface{}{
			"caseNumber": data["case_number"],
			"errorCount": len(output.Errors),
			"errors":     result.GetErrorMessages(),
		})
	}

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
