package assignuserrole

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

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(&Config{Timeout: 5 * time.Second}, db, &testLogger{t: t})
	h.now = func() time.Time { return fixedNow }
	return h, mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_AssignsRole(t *testing.T) {
	tests := []struct {
		input    string
		wantRole string
	}{
		{"admin", "admin"},
		{"Investigator", "investigator"},
		{" reporter ", "reporter"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h, mock := newTestHandler(t)

			mock.ExpectExec(`INSERT INTO user_roles .+ ON CONFLICT \(user_id\) DO UPDATE`).
				WithArgs("user-42", tt.wantRole, "admin-1", fixedNow).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`INSERT INTO audit_log`).
				WithArgs("role_assigned", "user", "user-42", sqlmock.AnyArg(), "2024-06-15T12:00:00Z").
				WillReturnResult(sqlmock.NewResult(1, 1))

			output, err := h.Execute(context.Background(), &Input{UserID: "user-42", Role: tt.input, AssignedBy: "admin-1"})

			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, output.Role)
			assert.Equal(t, "2024-06-15T12:00:00Z", output.AssignedAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// Error Tests
// ==========================

func TestHandler_Execute_InvalidRole(t *testing.T) {
	h, mock := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{UserID: "user-42", Role: "sheriff"})

	assert.True(t, errors.Is(err, ErrInvalidRole))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UpsertFailure(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec(`INSERT INTO user_roles`).WillReturnError(errors.New("fk violation"))

	_, err := h.Execute(context.Background(), &Input{UserID: "user-42", Role: "admin"})

	assert.True(t, errors.Is(err, ErrDatabaseUpdateFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_MissingUserID(t *testing.T) {
	h, mock := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{UserID: "  ", Role: "admin"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrDatabaseUpdateFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToStandardError(t *testing.T) {
	input := &Input{UserID: "", Role: "sheriff"}

	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"invalid role", ErrInvalidRole, apperrors.ErrCodeInvalidRole},
		{"missing user", ErrInvalidInput, apperrors.ErrCodeInvalidInput},
		{"storage", ErrDatabaseUpdateFailed, apperrors.ErrCodeDatabaseUpdateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := toStandardError(tt.err, input)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}
