// internal/workers/application/review-decision/models.go
package reviewdecision

import (
	"context"

	"application-intake/internal/common/discord"
	"application-intake/internal/models"
	sendnotification "application-intake/internal/workers/application/send-notification"
)

type Store interface {
	Transition(ctx context.Context, userID string, to models.ApplicationStatus, reviewerID, reason string) error
}

type Notifier interface {
	NotifyApplicant(ctx context.Context, userID string, msg discord.Message) *sendnotification.Output
	PublishOutcome(ctx context.Context, outcome models.DecisionOutcome) *sendnotification.Output
}
