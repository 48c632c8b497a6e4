package createcaserecord

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "crime-case-workers/internal/common/errors"
	"crime-case-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestInput() *Input {
	suspect := "john doe"
	return &Input{
		CaseData: CaseData{
			CaseNumber:     "CR-2024-001",
			Title:          "Armed robbery at corner store",
			Description:    "Two suspects entered the store with firearms.",
			CrimeType:      "armed robbery",
			Status:         "open",
			Severity:       "high",
			Location:       "sector 9",
			PrimarySuspect: &suspect,
			DateReported:   "2024-06-10",
		},
		ReportedBy: "reporter-7",
	}
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(createTestConfig(), db, logger.NewNoOpLogger())
	h.now = func() time.Time { return fixedNow }
	return h, mock
}

func expectNoDuplicate(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("CR-2024-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h, mock := newTestHandler(t)

	expectNoDuplicate(mock)
	mock.ExpectExec(`INSERT INTO cases`).
		WithArgs(
			sqlmock.AnyArg(), // uuid
			"CR-2024-001",
			"Armed robbery at corner store",
			"Two suspects entered the store with firearms.",
			"armed robbery",
			"open",
			"high",
			"sector 9",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			"pending_review",
			"reporter-7",
			fixedNow,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("case_created", "case", sqlmock.AnyArg(), sqlmock.AnyArg(), "2024-06-15T12:00:00Z").
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, output.CaseID)
	assert.Equal(t, "CR-2024-001", output.CaseNumber)
	assert.Equal(t, "pending_review", output.WorkflowStage)
	assert.Equal(t, "2024-06-15T12:00:00Z", output.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AuditFailureIsNotFatal(t *testing.T) {
	h, mock := newTestHandler(t)

	expectNoDuplicate(mock)
	mock.ExpectExec(`INSERT INTO cases`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnError(errors.New("audit table locked"))

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, "pending_review", output.WorkflowStage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Tests
// ==========================

func TestHandler_Execute_Duplicate(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("CR-2024-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := h.Execute(context.Background(), createTestInput())

	assert.True(t, errors.Is(err, ErrDuplicateCase))
	stdErr := apperrors.Normalize(h.toStandardError(err, createTestInput()))
	assert.Equal(t, apperrors.ErrCodeDuplicateCase, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertFailure(t *testing.T) {
	h, mock := newTestHandler(t)

	expectNoDuplicate(mock)
	mock.ExpectExec(`INSERT INTO cases`).WillReturnError(errors.New("connection reset"))

	_, err := h.Execute(context.Background(), createTestInput())

	assert.True(t, errors.Is(err, ErrDatabaseInsertFailed))
	stdErr := apperrors.Normalize(h.toStandardError(err, createTestInput()))
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_DuplicateCheckFailure(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).WillReturnError(errors.New("timeout"))

	_, err := h.Execute(context.Background(), createTestInput())

	assert.True(t, errors.Is(err, ErrQueryFailed))
	stdErr := apperrors.Normalize(h.toStandardError(err, createTestInput()))
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, stdErr.Code)
}

func TestHandler_Execute_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing case number", func(in *Input) { in.CaseData.CaseNumber = "  " }},
		{"bad date", func(in *Input) { in.CaseData.DateReported = "06/10/2024" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newTestHandler(t)
			input := createTestInput()
			tt.mutate(input)

			_, err := h.Execute(context.Background(), input)

			assert.True(t, errors.Is(err, ErrInvalidCase))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
