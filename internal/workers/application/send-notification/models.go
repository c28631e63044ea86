// internal/workers/application/send-notification/models.go
package sendnotification

import "application-intake/internal/common/discord"

type Input struct {
	Target      string          `json:"target"`
	RecipientID string          `json:"recipientId"`
	Message     discord.Message `json:"message"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
	MessageID      string `json:"messageId,omitempty"`
}

// Targets
const (
	TargetApplicant     = "applicant"
	TargetReviewChannel = "review_channel"
	TargetOutcomeSink   = "outcome_sink"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
