package models

type NotificationStatus string

const (
	NotificationSent     NotificationStatus = "sent"
	NotificationFailed   NotificationStatus = "failed"
	NotificationDisabled NotificationStatus = "disabled"
)

type Notification struct {
	ID          string             `json:"id"`
	RecipientID string             `json:"recipientId"`
	CaseNumber  string             `json:"caseNumber"`
	Type        string             `json:"type"`    // workflow stage the case entered
	Channel     string             `json:"channel"` // "email", "sms"
	Status      NotificationStatus `json:"status"`
	MessageID   string             `json:"messageId,omitempty"`
	Error       string             `json:"error,omitempty"`
	SentAt      string             `json:"sentAt,omitempty"`
}

type NotificationTemplate struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	SMS     string `json:"sms"`
}
