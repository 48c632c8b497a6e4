package matchcases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	apperrors "crime-case-workers/internal/common/errors"
	httpclient "crime-case-workers/internal/common/http"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "match-cases"

	MaxMatches = 5
	matchPath  = "/api/ai/match-cases"
)

var (
	ErrAIRateLimited     = errors.New("AI_RATE_LIMITED")
	ErrAIQuotaExhausted  = errors.New("AI_QUOTA_EXHAUSTED")
	ErrAIMatchingFailed  = errors.New("AI_MATCHING_FAILED")
	ErrAIMatchingTimeout = errors.New("AI_MATCHING_TIMEOUT")
)

type Handler struct {
	config     *Config
	client     *httpclient.Client
	redis      *redis.Client
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds a match-cases handler. rdb may be nil, which disables caching.
func NewHandler(config *Config, rdb *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		client:     httpclient.NewClient(config.Timeout),
		redis:      rdb,
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
		h.errHandler.HandleJobError(ctx, client, job, h.toStandardError(err))
		return
	}

	h.completeJob(client, job, output)
}

// toStandardError attaches the investigator-facing text so the process can
// show it without knowing the code.
func (h *Handler) toStandardError(err error) error {
	var stdErr *apperrors.StandardError
	switch {
	case errors.Is(err, ErrAIRateLimited):
		stdErr = apperrors.NewAIRateLimitedError(err.Error())
	case errors.Is(err, ErrAIQuotaExhausted):
		stdErr = apperrors.NewAIQuotaExhaustedError(err.Error())
	case errors.Is(err, ErrAIMatchingTimeout):
		stdErr = apperrors.NewAIMatchingTimeoutError()
	default:
		stdErr = apperrors.NewAIMatchingFailedError(err)
	}
	if stdErr.Metadata == nil {
		stdErr.Metadata = map[string]interface{}{}
	}
	stdErr.Metadata["userMessage"] = apperrors.UserMessage(stdErr.Code)
	return stdErr
}

func cacheKey(caseNumber string) string {
	return "case:matches:" + caseNumber
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	caseNumber := strings.TrimSpace(input.CaseNumber)
	if caseNumber == "" {
		if cn, ok := input.Case["case_number"].(string); ok {
			caseNumber = cn
		}
	}
	if caseNumber == "" {
		return nil, fmt.Errorf("%w: caseNumber is required", ErrAIMatchingFailed)
	}

	if !input.SkipCache {
		if matches, ok := h.cachedMatches(ctx, caseNumber); ok {
			h.logger.Debug("match cache hit", map[string]interface{}{"caseNumber": caseNumber})
			return &Output{CaseNumber: caseNumber, Matches: matches, FromCache: true}, nil
		}
	}

	// copy so the caller's case map is left untouched
	payload := make(map[string]interface{}, len(input.Case)+1)
	for k, v := range input.Case {
		payload[k] = v
	}
	if _, ok := payload["case_number"]; !ok {
		payload["case_number"] = caseNumber
	}

	resp, err := h.callMatching(ctx, payload)
	if err != nil {
		return nil, err
	}

	matches := normalizeMatches(resp.Matches, caseNumber)
	h.storeMatches(ctx, caseNumber, matches)

	h.logger.Info("case matches found", map[string]interface{}{
		"caseNumber": caseNumber,
		"matchCount": len(matches),
	})

	return &Output{CaseNumber: caseNumber, Matches: matches}, nil
}

func (h *Handler) callMatching(ctx context.Context, payload map[string]interface{}) (*matchResponse, error) {
	headers := map[string]string{}
	if h.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + h.config.APIKey
	}
	req := matchRequest{Case: payload, MaxResults: MaxMatches}
	url := strings.TrimRight(h.config.GenAIBaseURL, "/") + matchPath

	var lastErr error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrAIMatchingTimeout
			}
		}

		resp, err := h.client.PostJSON(ctx, url, headers, req)
		if err != nil {
			if isTimeout(ctx, err) {
				return nil, ErrAIMatchingTimeout
			}
			lastErr = err
			continue
		}

		if resp.IsSuccess() {
			var out matchResponse
			if err := json.Unmarshal(resp.Body, &out); err != nil {
				return nil, fmt.Errorf("%w: decode response: %v", ErrAIMatchingFailed, err)
			}
			return &out, nil
		}

		statusErr := classifyStatus(resp)
		if resp.StatusCode < http.StatusInternalServerError || !errors.Is(statusErr, ErrAIMatchingFailed) {
			return nil, statusErr
		}
		lastErr = statusErr
		h.logger.Warn("matching service error, retrying", map[string]interface{}{
			"status":  resp.StatusCode,
			"attempt": attempt + 1,
		})
	}

	if errors.Is(lastErr, ErrAIMatchingFailed) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %v", ErrAIMatchingFailed, lastErr)
}

func classifyStatus(resp *httpclient.Response) error {
	var body errorResponse
	_ = json.Unmarshal(resp.Body, &body)
	detail := body.Error.Message
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrAIRateLimited, detail)
	case resp.StatusCode == http.StatusPaymentRequired, isQuotaBody(body):
		return fmt.Errorf("%w: %s", ErrAIQuotaExhausted, detail)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrAIMatchingFailed, resp.StatusCode, detail)
	}
}

func isQuotaBody(body errorResponse) bool {
	code := strings.ToLower(body.Error.Code)
	msg := strings.ToLower(body.Error.Message)
	return strings.Contains(code, "quota") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "credits")
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// normalizeMatches drops the source case, clamps scores to 0-100 and keeps
// the best MaxMatches.
func normalizeMatches(matches []Match, caseNumber string) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.CaseNumber == "" || strings.EqualFold(m.CaseNumber, caseNumber) {
			continue
		}
		switch {
		case m.Score < 0:
			m.Score = 0
		case m.Score > 100:
			m.Score = 100
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if len(out) > MaxMatches {
		out = out[:MaxMatches]
	}
	return out
}

func (h *Handler) cachedMatches(ctx context.Context, caseNumber string) ([]Match, bool) {
	if h.redis == nil {
		return nil, false
	}
	val, err := h.redis.Get(ctx, cacheKey(caseNumber)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("match cache read failed", map[string]interface{}{
				"error":      err,
				"caseNumber": caseNumber,
			})
		}
		return nil, false
	}

	var matches []Match
	if err := json.Unmarshal([]byte(val), &matches); err != nil {
		return nil, false
	}
	return matches, true
}

func (h *Handler) storeMatches(ctx context.Context, caseNumber string, matches []Match) {
	if h.redis == nil {
		return
	}
	data, err := json.Marshal(matches)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, cacheKey(caseNumber), data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("match cache write failed", map[string]interface{}{
			"error":      err,
			"caseNumber": caseNumber,
		})
	}
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
