package errors

import (
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeTranscriptNotFinal    ErrorCode = "TRANSCRIPT_NOT_FINAL"
	ErrCodeClarificationRequired ErrorCode = "CLARIFICATION_REQUIRED"

	ErrCodeCaseValidationFailed   ErrorCode = "CASE_VALIDATION_FAILED"
	ErrCodeDuplicateCase          ErrorCode = "DUPLICATE_CASE"
	ErrCodeCaseNotFound           ErrorCode = "CASE_NOT_FOUND"
	ErrCodeInvalidStageTransition ErrorCode = "INVALID_STAGE_TRANSITION"
	ErrCodeInvalidRole            ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"

	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDatabaseUpdateFailed ErrorCode = "DATABASE_UPDATE_FAILED"
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeSearchQueryFailed  ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout      ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound      ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeCaseIndexingFailed ErrorCode = "CASE_INDEXING_FAILED"

	ErrCodeAIRateLimited     ErrorCode = "AI_RATE_LIMITED"
	ErrCodeAIQuotaExhausted  ErrorCode = "AI_QUOTA_EXHAUSTED"
	ErrCodeAIMatchingFailed  ErrorCode = "AI_MATCHING_FAILED"
	ErrCodeAIMatchingTimeout ErrorCode = "AI_MATCHING_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeParseError      ErrorCode = "PARSE_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodeZeebeNotFound   ErrorCode = "ZEEBE_RESOURCE_NOT_FOUND"
	ErrCodeZeebeRejected   ErrorCode = "ZEEBE_COMMAND_REJECTED"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewTranscriptNotFinalError() *StandardError {
	return newError(ErrCodeTranscriptNotFinal, "Transcript is not final", "interim transcripts are not interpreted", false)
}

// NewClarificationRequiredError carries the follow-up question in Metadata.
func NewClarificationRequiredError(question string) *StandardError {
	err := newError(ErrCodeClarificationRequired, "Command needs clarification", question, false)
	err.Metadata = map[string]interface{}{"clarificationQuestion": question}
	return err
}

func NewCaseValidationFailedError(details string) *StandardError {
	return newError(ErrCodeCaseValidationFailed, "Case record validation failed", details, false)
}

func NewDuplicateCaseError(caseNumber string) *StandardError {
	return newError(ErrCodeDuplicateCase, "Case already exists", fmt.Sprintf("caseNumber: %s", caseNumber), false)
}

func NewCaseNotFoundError(caseNumber string) *StandardError {
	return newError(ErrCodeCaseNotFound, "Case not found", fmt.Sprintf("caseNumber: %s", caseNumber), false)
}

func NewInvalidStageTransitionError(from, to string) *StandardError {
	return newError(ErrCodeInvalidStageTransition, "Workflow stage transition not allowed",
		fmt.Sprintf("from: %s, to: %s", from, to), false)
}

func NewInvalidRoleError(role string) *StandardError {
	return newError(ErrCodeInvalidRole, "Unknown user role", fmt.Sprintf("role: %s", role), false)
}

func NewInvalidInputError(field, reason string) *StandardError {
	return newError(ErrCodeInvalidInput, "Job input is invalid", fmt.Sprintf("field: %s, reason: %s", field, reason), false)
}

// Storage errors are surfaced verbatim and never retried.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), false)
}

func NewDatabaseUpdateFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseUpdateFailed, "Database update operation failed", err.Error(), false)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), false)
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error", err.Error(), true)
}

func NewSearchTimeoutError() *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout", "search exceeded the worker timeout", true)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Elasticsearch index not found", fmt.Sprintf("indexName: %s", indexName), false)
}

func NewCaseIndexingFailedError(caseNumber string, err error) *StandardError {
	return newError(ErrCodeCaseIndexingFailed, "Published case could not be indexed",
		fmt.Sprintf("caseNumber: %s, error: %s", caseNumber, err.Error()), true)
}

func NewAIRateLimitedError(details string) *StandardError {
	return newError(ErrCodeAIRateLimited, UserMessage(ErrCodeAIRateLimited), details, false)
}

func NewAIQuotaExhaustedError(details string) *StandardError {
	return newError(ErrCodeAIQuotaExhausted, UserMessage(ErrCodeAIQuotaExhausted), details, false)
}

func NewAIMatchingFailedError(err error) *StandardError {
	return newError(ErrCodeAIMatchingFailed, UserMessage(ErrCodeAIMatchingFailed), err.Error(), true)
}

func NewAIMatchingTimeoutError() *StandardError {
	return newError(ErrCodeAIMatchingTimeout, UserMessage(ErrCodeAIMatchingTimeout), "matching call exceeded timeout", true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", err.Error(), false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	e := newError(ErrCodeExternalService, fmt.Sprintf("%s request failed", service), err.Error(), true)
	e.Metadata = map[string]interface{}{"service": service}
	return e
}

func NewTimeoutError(service string, err error) *StandardError {
	e := newError(ErrCodeTimeout, fmt.Sprintf("%s request timed out", service), err.Error(), true)
	e.Metadata = map[string]interface{}{"service": service}
	return e
}

// NewZeebeNotFoundError covers jobs, process definitions or instances the
// broker no longer knows about. Retrying cannot bring them back.
func NewZeebeNotFoundError(err error) *StandardError {
	e := newError(ErrCodeZeebeNotFound, "zeebe resource not found", err.Error(), false)
	e.Metadata = map[string]interface{}{"service": "zeebe"}
	return e
}

func NewZeebeRejectedError(err error) *StandardError {
	e := newError(ErrCodeZeebeRejected, "zeebe rejected the command", err.Error(), false)
	e.Metadata = map[string]interface{}{"service": "zeebe"}
	return e
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

var userMessages = map[ErrorCode]string{
	ErrCodeAIRateLimited:     "The case matching service is receiving too many requests. Please wait a moment and try again.",
	ErrCodeAIQuotaExhausted:  "The case matching service has run out of credits. Please contact an administrator.",
	ErrCodeAIMatchingFailed:  "Case matching failed. Please try again later.",
	ErrCodeAIMatchingTimeout: "Case matching took too long to respond. Please try again.",
}

// UserMessage returns the text shown to investigators for a code.
func UserMessage(code ErrorCode) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return "Something went wrong. Please try again."
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeTranscriptNotFinal:     "TRANSCRIPT_NOT_FINAL",
	ErrCodeClarificationRequired:  "CLARIFICATION_REQUIRED",
	ErrCodeCaseValidationFailed:   "CASE_VALIDATION_FAILED",
	ErrCodeDuplicateCase:          "DUPLICATE_CASE",
	ErrCodeCaseNotFound:           "CASE_NOT_FOUND",
	ErrCodeInvalidStageTransition: "INVALID_STAGE_TRANSITION",
	ErrCodeInvalidRole:            "INVALID_ROLE",
	ErrCodeInvalidInput:           "INVALID_INPUT",
	ErrCodeDatabaseInsertFailed:   "DATABASE_INSERT_FAILED",
	ErrCodeDatabaseUpdateFailed:   "DATABASE_UPDATE_FAILED",
	ErrCodeQueryExecutionFailed:   "QUERY_EXECUTION_FAILED",
	ErrCodeSearchQueryFailed:      "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:          "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:          "INDEX_NOT_FOUND",
	ErrCodeCaseIndexingFailed:     "CASE_INDEXING_FAILED",
	ErrCodeAIRateLimited:          "AI_RATE_LIMITED",
	ErrCodeAIQuotaExhausted:       "AI_QUOTA_EXHAUSTED",
	ErrCodeAIMatchingFailed:       "AI_MATCHING_FAILED",
	ErrCodeAIMatchingTimeout:      "AI_MATCHING_TIMEOUT",
	ErrCodeNotificationSendFailed: "NOTIFICATION_SEND_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSearchQueryFailed,
		ErrCodeCaseIndexingFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeAIMatchingFailed:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeAIMatchingTimeout,
		ErrCodeExternalService,
		ErrCodeTimeout:
		return 2

	default:
		return 0 // business and storage errors
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "AI_"):
		return "AI"
	case strings.HasPrefix(codeStr, "ZEEBE_"):
		return "ORCHESTRATION"
	case strings.Contains(codeStr, "TRANSCRIPT") || strings.Contains(codeStr, "CLARIFICATION"):
		return "INTERPRETER"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_EXECUTION"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "DUPLICATE") || strings.Contains(codeStr, "NOT_FOUND"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
