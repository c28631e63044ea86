// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"application-intake/internal/common/discord"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/metrics"
	"application-intake/internal/models"

	"github.com/google/uuid"
)

const (
	TaskType = "send-notification"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrUnknownTarget          = errors.New("UNKNOWN_TARGET")
)

// OutcomeSink receives review decision outcomes for audit.
type OutcomeSink interface {
	PublishOutcome(ctx context.Context, outcome models.DecisionOutcome) (string, error)
}

// Handler delivers applicant DMs, review tickets and decision outcomes.
// Delivery failures are logged and reported in the Output, never returned.
type Handler struct {
	config *Config
	client discord.Client
	sink   OutcomeSink
	logger logger.Logger
	now    func() time.Time
}

// NewHandler builds the dispatcher. sink may be nil when outcome publishing
// is disabled.
func NewHandler(config *Config, client discord.Client, sink OutcomeSink, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		sink:   sink,
		logger: log.WithFields(map[string]interface{}{"worker": TaskType}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input is required", ErrNotificationSendFailed)
	}

	switch input.Target {
	case TargetApplicant:
		return h.NotifyApplicant(ctx, input.RecipientID, input.Message), nil
	case TargetReviewChannel:
		return h.send(ctx, TargetReviewChannel, func(ctx context.Context) (string, error) {
			return h.client.SendChannelMessage(ctx, h.config.ReviewChannelID, input.Message)
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, input.Target)
	}
}

// NotifyApplicant sends a direct message to userID.
func (h *Handler) NotifyApplicant(ctx context.Context, userID string, msg discord.Message) *Output {
	return h.send(ctx, TargetApplicant, func(ctx context.Context) (string, error) {
		return "", h.client.SendDirectMessage(ctx, userID, msg)
	}, "userId", userID)
}

// NotifyReviewChannel posts the review ticket for rec with approve and
// decline controls. avatarURL is shown only when non-empty.
func (h *Handler) NotifyReviewChannel(ctx context.Context, rec *models.ApplicationRecord, answers []models.Answer, avatarURL string) *Output {
	msg := TicketMessage(rec.UserID, answers, avatarURL)
	return h.send(ctx, TargetReviewChannel, func(ctx context.Context) (string, error) {
		return h.client.SendChannelMessage(ctx, h.config.ReviewChannelID, msg)
	}, "userId", rec.UserID, "channelId", h.config.ReviewChannelID)
}

// PublishOutcome forwards outcome to the audit sink, assigning an event id
// when missing.
func (h *Handler) PublishOutcome(ctx context.Context, outcome models.DecisionOutcome) *Output {
	if outcome.EventID == "" {
		outcome.EventID = uuid.New().String()
	}
	if h.sink == nil || !h.config.OutcomesEnabled {
		metrics.NotificationsTotal.WithLabelValues(TargetOutcomeSink, StatusDisabled).Inc()
		return &Output{
			NotificationID: outcome.EventID,
			Status:         StatusDisabled,
			SentAt:         h.now().Format(time.RFC3339),
		}
	}

	out := h.send(ctx, TargetOutcomeSink, func(ctx context.Context) (string, error) {
		return h.sink.PublishOutcome(ctx, outcome)
	}, "userId", outcome.ApplicantID, "status", string(outcome.Status))
	out.NotificationID = outcome.EventID
	return out
}

func (h *Handler) send(ctx context.Context, target string, deliver func(context.Context) (string, error), kv ...string) *Output {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	fields := map[string]interface{}{"target": target}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		SentAt:         h.now().Format(time.RFC3339),
	}

	messageID, err := deliver(ctx)
	if err != nil {
		fields["error"] = fmt.Errorf("%w: %v", ErrNotificationSendFailed, err).Error()
		h.logger.Error("notification send failed", fields)
		output.Status = StatusFailed
		metrics.NotificationsTotal.WithLabelValues(target, StatusFailed).Inc()
		return output
	}

	fields["notificationId"] = output.NotificationID
	h.logger.Info("notification sent", fields)
	output.Status = StatusSent
	output.MessageID = messageID
	metrics.NotificationsTotal.WithLabelValues(target, StatusSent).Inc()
	return output
}

// TicketMessage renders the review ticket for applicantID.
func TicketMessage(applicantID string, answers []models.Answer, avatarURL string) discord.Message {
	fields := make([]discord.EmbedField, 0, len(answers))
	for _, a := range answers {
		fields = append(fields, discord.EmbedField{Name: a.Label, Value: a.Value})
	}

	return discord.Message{
		Embeds: []discord.Embed{{
			Title:        "New Application",
			Description:  fmt.Sprintf("New application submitted by <@%s>", applicantID),
			Color:        discord.ColorYellow,
			ThumbnailURL: avatarURL,
			Fields:       fields,
		}},
		Buttons: []discord.Button{
			{Label: "Approve", CustomID: models.ReviewCustomID(models.ActionApprove, applicantID), Style: discord.ButtonSuccess},
			{Label: "Decline", CustomID: models.ReviewCustomID(models.ActionDecline, applicantID), Style: discord.ButtonDanger},
		},
	}
}

