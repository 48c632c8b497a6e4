package notifycaseupdate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Services
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         int
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       int
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls++
	return m.PublishFunc(ctx, params, optFns...)
}

func okSES(captured **ses.SendEmailInput) *MockSESService {
	return &MockSESService{SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		if captured != nil {
			*captured = params
		}
		return &ses.SendEmailOutput{MessageId: aws.String("ses-msg-1")}, nil
	}}
}

func okSNS(captured **sns.PublishInput) *MockSNSService {
	return &MockSNSService{PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
		if captured != nil {
			*captured = params
		}
		return &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}, nil
	}}
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled:         true,
		SMSEnabled:           true,
		FromEmail:            "cases@precinct.gov",
		SMSSeverityThreshold: models.SeverityHigh,
		Timeout:              5 * time.Second,
	}
}

func createTestInput(stage, severity string) *Input {
	return &Input{
		CaseNumber:    "CR-2024-001",
		Title:         "Armed robbery at corner store",
		WorkflowStage: stage,
		Severity:      severity,
		RecipientID:   "reporter-7",
		Comment:       "Please attach the CCTV stills.",
	}
}

func setupDB(t *testing.T) (*Handler, sqlmock.Sqlmock, *MockSESService, *MockSNSService) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sesMock, snsMock := okSES(nil), okSNS(nil)
	h := NewHandler(createTestConfig(), db, sesMock, snsMock, logger.NewNoOpLogger())
	h.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return h, mock, sesMock, snsMock
}

func expectContact(mock sqlmock.Sqlmock, email, phone interface{}) {
	mock.ExpectQuery(`SELECT id, name, email, phone FROM users WHERE id = \$1`).
		WithArgs("reporter-7").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone"}).
			AddRow("reporter-7", "Dana Reyes", email, phone))
}

// ==========================
// Delivery Tests
// ==========================

func TestHandler_Execute_ChannelSelection(t *testing.T) {
	tests := []struct {
		name       string
		severity   string
		email      interface{}
		phone      interface{}
		wantStatus models.NotificationStatus
		wantEmail  int
		wantSMS    int
	}{
		{"high severity sends both", "high", "dana@precinct.gov", "+15551234567", models.NotificationSent, 1, 1},
		{"critical severity sends both", "critical", "dana@precinct.gov", "+15551234567", models.NotificationSent, 1, 1},
		{"medium severity is email only", "medium", "dana@precinct.gov", "+15551234567", models.NotificationSent, 1, 0},
		{"no phone on file", "critical", "dana@precinct.gov", nil, models.NotificationSent, 1, 0},
		{"sms only", "high", nil, "+15551234567", models.NotificationSent, 0, 1},
		{"no contact channels", "low", nil, nil, models.NotificationDisabled, 0, 0},
		{"malformed contact details", "high", "not-an-email", "555-1234", models.NotificationDisabled, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, sesMock, snsMock := setupDB(t)
			expectContact(mock, tt.email, tt.phone)

			output, err := h.Execute(context.Background(), createTestInput("under_review", tt.severity))

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, output.Status)
			assert.Equal(t, tt.wantEmail, sesMock.calls)
			assert.Equal(t, tt.wantSMS, snsMock.calls)
			assert.Len(t, output.Deliveries, tt.wantEmail+tt.wantSMS)
			assert.Equal(t, "2024-06-15T12:00:00Z", output.SentAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_RendersStageTemplate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var emailIn *ses.SendEmailInput
	var smsIn *sns.PublishInput
	h := NewHandler(createTestConfig(), db, okSES(&emailIn), okSNS(&smsIn), logger.NewNoOpLogger())
	expectContact(mock, "dana@precinct.gov", "+15551234567")

	output, err := h.Execute(context.Background(), createTestInput("needs_editing", "high"))

	require.NoError(t, err)
	require.NotNil(t, emailIn)
	require.NotNil(t, smsIn)

	assert.Equal(t, []string{"dana@precinct.gov"}, emailIn.Destination.ToAddresses)
	assert.Equal(t, "cases@precinct.gov", aws.ToString(emailIn.Source))
	assert.Equal(t, "Case CR-2024-001 needs changes", aws.ToString(emailIn.Message.Subject.Data))
	body := aws.ToString(emailIn.Message.Body.Text.Data)
	assert.True(t, strings.HasPrefix(body, "Hi Dana Reyes,"))
	assert.Contains(t, body, "Armed robbery at corner store")
	assert.Contains(t, body, "Please attach the CCTV stills.")
	assert.NotContains(t, body, "{{")

	assert.Equal(t, "+15551234567", aws.ToString(smsIn.PhoneNumber))
	assert.Equal(t, "Case CR-2024-001 needs edits before approval.", aws.ToString(smsIn.Message))

	require.Len(t, output.Deliveries, 2)
	assert.Equal(t, "ses-msg-1", output.Deliveries[0].MessageID)
	assert.Equal(t, "sns-msg-1", output.Deliveries[1].MessageID)
	assert.Equal(t, "needs_editing", output.Deliveries[0].Type)
}

// ==========================
// Failure Tests
// ==========================

func TestHandler_Execute_ChannelFailureReportsFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	failingSES := &MockSESService{SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		return nil, errors.New("MessageRejected: address not verified")
	}}
	snsMock := okSNS(nil)
	h := NewHandler(createTestConfig(), db, failingSES, snsMock, logger.NewNoOpLogger())
	expectContact(mock, "dana@precinct.gov", "+15551234567")

	output, err := h.Execute(context.Background(), createTestInput("published", "critical"))

	require.NoError(t, err)
	assert.Equal(t, models.NotificationFailed, output.Status)
	assert.Equal(t, 1, snsMock.calls)
	require.Len(t, output.Deliveries, 2)
	assert.Equal(t, models.NotificationFailed, output.Deliveries[0].Status)
	assert.Contains(t, output.Deliveries[0].Error, "MessageRejected")
	assert.Equal(t, models.NotificationSent, output.Deliveries[1].Status)
}

func TestHandler_Execute_MissingRecipient(t *testing.T) {
	h, mock, sesMock, _ := setupDB(t)
	mock.ExpectQuery(`SELECT id, name, email, phone FROM users`).
		WithArgs("reporter-7").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone"}))

	output, err := h.Execute(context.Background(), createTestInput("approved", "high"))

	require.NoError(t, err)
	assert.Equal(t, models.NotificationDisabled, output.Status)
	assert.Empty(t, output.Deliveries)
	assert.Equal(t, 0, sesMock.calls)
}

func TestHandler_Execute_ContactLookupError(t *testing.T) {
	h, mock, _, _ := setupDB(t)
	mock.ExpectQuery(`SELECT id, name, email, phone FROM users`).WillReturnError(errors.New("connection refused"))

	_, err := h.Execute(context.Background(), createTestInput("approved", "high"))

	assert.True(t, errors.Is(err, ErrQueryFailed))
}

func TestHandler_Execute_UnknownStage(t *testing.T) {
	h, mock, _, _ := setupDB(t)

	_, err := h.Execute(context.Background(), createTestInput("archived", "high"))

	assert.True(t, errors.Is(err, ErrNotificationSendFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderTemplate(t *testing.T) {
	got := renderTemplate("Case {{caseNumber}} {{missing}}for {{name}}", map[string]interface{}{
		"caseNumber": "CR-1",
		"name":       "Dana",
	})
	assert.Equal(t, "Case CR-1 for Dana", got)
}
