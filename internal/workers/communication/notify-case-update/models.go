package notifycaseupdate

import "crime-case-workers/internal/models"

type Input struct {
	CaseNumber    string `json:"caseNumber"`
	Title         string `json:"title,omitempty"`
	WorkflowStage string `json:"workflowStage"`
	Severity      string `json:"severity"`
	RecipientID   string `json:"recipientId"`
	Comment       string `json:"comment,omitempty"`
}

type Output struct {
	NotificationID string                    `json:"notificationId"`
	Status         models.NotificationStatus `json:"status"`
	Deliveries     []models.Notification     `json:"deliveries"`
	SentAt         string                    `json:"sentAt"`
}
