// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import (
	"context"

	"application-intake/internal/common/discord"
	"application-intake/internal/models"
	sendnotification "application-intake/internal/workers/application/send-notification"
	validateapplicationdata "application-intake/internal/workers/application/validate-application-data"
)

// ReplySubmitted confirms a stored submission to the applicant.
const ReplySubmitted = "Application submitted!"

// Submission outcomes recorded on intake.submissions.
const (
	statusSubmitted    = "submitted"
	statusInvalid      = "invalid"
	statusFailed       = "failed"
	statusTicketFailed = "ticket_failed"
)

type Validator interface {
	Execute(ctx context.Context, input *validateapplicationdata.Input) (*validateapplicationdata.Output, error)
}

type Store interface {
	Upsert(ctx context.Context, rec *models.ApplicationRecord) error
}

// Releaser gives a user's form reservation back when nothing was stored.
type Releaser interface {
	Release(ctx context.Context, userID string) error
}

type AvatarResolver interface {
	ResolveAvatar(ctx context.Context, handle string) (string, bool)
}

type Notifier interface {
	NotifyApplicant(ctx context.Context, userID string, msg discord.Message) *sendnotification.Output
	NotifyReviewChannel(ctx context.Context, rec *models.ApplicationRecord, answers []models.Answer, avatarURL string) *sendnotification.Output
}
