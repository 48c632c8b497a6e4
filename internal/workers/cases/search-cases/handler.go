package searchcases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "crime-case-workers/internal/common/errors"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/common/metrics"
	"crime-case-workers/internal/interpreter"
	"crime-case-workers/internal/workers/cases/search-cases/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "search-cases"
)

var (
	ErrClarificationRequired = errors.New("CLARIFICATION_REQUIRED")
	ErrSearchQueryFailed     = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout         = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound         = errors.New("INDEX_NOT_FOUND")
)

type Handler struct {
	config     *Config
	client     *elasticsearch.Client
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		client:     client,
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
		h.errHandler.HandleJobError(ctx, client, job, h.toStandardError(err, &input))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	cmd := input.Command
	if cmd.NeedsClarification {
		return nil, fmt.Errorf("%w: confidence %.2f below %.2f", ErrClarificationRequired, cmd.Confidence, interpreter.ClarificationThreshold)
	}

	index := input.IndexName
	if index == "" {
		index = h.config.DefaultIndex
	}

	result, err := queries.Execute(ctx, h.client, queries.CaseQuery{
		Index:   index,
		Command: cmd,
		From:    input.Pagination.From,
		Size:    input.Pagination.Size,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSearchTimeout
		}
		if errors.Is(err, queries.ErrIndexNotFound) || errors.Is(err, queries.ErrMissingIndex) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, index)
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	h.logger.Info("case search completed", map[string]interface{}{
		"intent":    cmd.Intent,
		"index":     index,
		"totalHits": result.TotalHits,
		"took":      result.Took,
	})

	return &Output{
		Cases:     result.Hits,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
		Summary:   interpreter.FormatCommandSummary(cmd),
	}, nil
}

func (h *Handler) toStandardError(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrClarificationRequired):
		question := interpreter.Clarify(input.Command.Intent, input.Command.Entities)
		if input.Command.ClarificationQuestion != nil {
			question = *input.Command.ClarificationQuestion
		}
		return apperrors.NewClarificationRequiredError(question)
	case errors.Is(err, ErrIndexNotFound):
		index := input.IndexName
		if index == "" {
			index = h.config.DefaultIndex
		}
		return apperrors.NewIndexNotFoundError(index)
	case errors.Is(err, ErrSearchTimeout):
		return apperrors.NewSearchTimeoutError()
	case errors.Is(err, ErrSearchQueryFailed):
		return apperrors.NewSearchQueryFailedError(err)
	}
	return apperrors.Normalize(err)
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
