package notifycaseupdate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	awsclients "crime-case-workers/internal/common/aws"
	apperrors "crime-case-workers/internal/common/errors"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/common/metrics"
	"crime-case-workers/internal/common/validation"
	"crime-case-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-case-update"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrQueryFailed            = errors.New("QUERY_EXECUTION_FAILED")
)

type Handler struct {
	config     *Config
	db         *sql.DB
	email      awsclients.EmailSender
	sms        awsclients.SMSPublisher
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, db *sql.DB, email awsclients.EmailSender, sms awsclients.SMSPublisher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		email:      email,
		sms:        sms,
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
		if errors.Is(err, ErrQueryFailed) {
			h.errHandler.HandleJobError(ctx, client, job, apperrors.NewQueryExecutionFailedError("recipient_contact", err))
			return
		}
		h.errHandler.HandleJobError(ctx, client, job, apperrors.NewNotificationSendFailedError("template", err))
		return
	}

	h.completeJob(client, job, output)
}

// execute reports channel failures in the output status; only a missing
// template or a broken contact lookup fails the job.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	stage := models.WorkflowStage(input.WorkflowStage)
	tmpl, ok := templates[stage]
	if !ok {
		return nil, fmt.Errorf("%w: no template for stage %q", ErrNotificationSendFailed, input.WorkflowStage)
	}

	notificationID := uuid.New().String()
	sentAt := h.now().Format(time.RFC3339)
	output := &Output{
		NotificationID: notificationID,
		Status:         models.NotificationDisabled,
		Deliveries:     []models.Notification{},
		SentAt:         sentAt,
	}

	contact, err := h.getContact(ctx, input.RecipientID)
	if errors.Is(err, sql.ErrNoRows) {
		h.logger.Warn("recipient not found", map[string]interface{}{
			"recipientId": input.RecipientID,
			"caseNumber":  input.CaseNumber,
		})
		return output, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	data := map[string]interface{}{
		"caseNumber": input.CaseNumber,
		"title":      input.Title,
		"stage":      input.WorkflowStage,
		"severity":   input.Severity,
		"name":       contact.Name,
		"comment":    input.Comment,
	}

	var sent, failed int
	deliver := func(channel string, send func() (string, error)) {
		n := models.Notification{
			ID:          notificationID,
			RecipientID: contact.UserID,
			CaseNumber:  input.CaseNumber,
			Type:        tmpl.Type,
			Channel:     channel,
			SentAt:      sentAt,
		}
		messageID, err := send()
		if err != nil {
			failed++
			n.Status = models.NotificationFailed
			n.Error = err.Error()
			h.logger.Error("notification send failed", map[string]interface{}{
				"error":      err,
				"channel":    channel,
				"caseNumber": input.CaseNumber,
			})
		} else {
			sent++
			n.Status = models.NotificationSent
			n.MessageID = messageID
		}
		output.Deliveries = append(output.Deliveries, n)
	}

	if h.config.EmailEnabled && h.email != nil && contact.Email != nil && validation.ValidateEmail(*contact.Email) {
		subject := renderTemplate(tmpl.Subject, data)
		body := renderTemplate(tmpl.Body, data)
		deliver(ChannelEmail, func() (string, error) { return h.sendEmail(ctx, *contact.Email, subject, body) })
	}

	severity := models.Severity(input.Severity)
	if h.config.SMSEnabled && h.sms != nil && severity.AtLeast(h.config.SMSSeverityThreshold) &&
		contact.Phone != nil && validation.ValidatePhone(*contact.Phone) {
		message := renderTemplate(tmpl.SMS, data)
		deliver(ChannelSMS, func() (string, error) { return h.sendSMS(ctx, *contact.Phone, message) })
	}

	switch {
	case failed > 0:
		output.Status = models.NotificationFailed
	case sent > 0:
		output.Status = models.NotificationSent
	}

	h.logger.Info("case update notification processed", map[string]interface{}{
		"caseNumber":     input.CaseNumber,
		"stage":          input.WorkflowStage,
		"recipientId":    contact.UserID,
		"status":         output.Status,
		"notificationId": notificationID,
	})

	return output, nil
}

func (h *Handler) getContact(ctx context.Context, userID string) (*models.UserContact, error) {
	var c models.UserContact
	err := h.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone FROM users WHERE id = $1`, userID).
		Scan(&c.UserID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) (string, error) {
	out, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) (string, error) {
	out, err := h.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
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
