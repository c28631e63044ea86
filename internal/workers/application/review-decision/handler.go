// internal/workers/application/review-decision/handler.go
package reviewdecision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"application-intake/internal/common/discord"
	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
	"application-intake/internal/models"
	sendnotification "application-intake/internal/workers/application/send-notification"
	applicationstore "application-intake/internal/workers/data-access/application-store"
)

const (
	TaskType = "review-decision"
)

var (
	ErrTransitionFailed = errors.New("TRANSITION_FAILED")
)

// Handler applies a reviewer's approve or decline to a pending application.
// The stored transition is the only step that can stop the workflow; the
// ticket update, role grant, DM and outcome publish are each best effort.
type Handler struct {
	config   *Config
	store    Store
	client   discord.Client
	notifier Notifier
	errors   *apperrors.Handler
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *Config, store Store, client discord.Client, notifier Notifier, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"worker": TaskType})
	return &Handler{
		config:   config,
		store:    store,
		client:   client,
		notifier: notifier,
		errors:   apperrors.NewHandler(scoped),
		logger:   scoped,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Handle(ctx context.Context, d models.ReviewDecision) error {
	to := d.Action.TargetStatus()
	reason := ""
	if d.Action == models.ActionDecline {
		reason = h.config.DeclineReason
	}

	fields := map[string]interface{}{
		"applicantId": d.ApplicantID,
		"reviewerId":  d.Reviewer.UserID,
		"action":      string(d.Action),
	}

	if err := h.store.Transition(ctx, d.ApplicantID, to, d.Reviewer.UserID, reason); err != nil {
		switch {
		case errors.Is(err, applicationstore.ErrAlreadyDecided):
			h.logger.Info("application already reviewed", fields)
			h.closeStaleTicket(ctx, d, fmt.Sprintf("Application for <@%s> was already reviewed", d.ApplicantID), apperrors.ReplyAlreadyReviewed)
			return nil
		case errors.Is(err, applicationstore.ErrNotFound):
			h.logger.Info("no application for review", fields)
			h.closeStaleTicket(ctx, d, fmt.Sprintf("No application on record for <@%s>", d.ApplicantID), apperrors.ReplyNoRecord)
			return nil
		default:
			stdErr := apperrors.NewPersistenceFailedError("transition application", err)
			h.reply(ctx, d.Interaction, h.errors.ReplyFor(stdErr))
			return fmt.Errorf("%w: %v", ErrTransitionFailed, stdErr)
		}
	}

	ticketUpdated := true
	content := fmt.Sprintf("Application %s for <@%s>", to, d.ApplicantID)
	if err := h.client.UpdateSourceMessage(ctx, d.Interaction, content); err != nil {
		ticketUpdated = false
		h.logger.Warn("ticket update failed", withError(fields, err))
	}

	// Effects after the acknowledgement outlive the interaction deadline.
	sideCtx, cancel := h.sideEffectContext(ctx)
	defer cancel()

	roleGranted := false
	var dm *sendnotification.Output
	if d.Action == models.ActionApprove {
		roleGranted = h.grantRole(sideCtx, d, fields)
		dm = h.notifier.NotifyApplicant(sideCtx, d.ApplicantID, ApprovedMessage(h.config.ApprovedMessage))
	} else {
		dm = h.notifier.NotifyApplicant(sideCtx, d.ApplicantID, DeclinedMessage(reason))
	}

	outcome := models.DecisionOutcome{
		ApplicantID:   d.ApplicantID,
		ReviewerID:    d.Reviewer.UserID,
		Status:        to,
		Reason:        reason,
		RoleGranted:   roleGranted,
		ApplicantSent: dm.Status == sendnotification.StatusSent,
		TicketUpdated: ticketUpdated,
		DecidedAt:     h.now(),
	}
	published := h.notifier.PublishOutcome(sideCtx, outcome)

	h.logger.Info("review decision applied", map[string]interface{}{
		"applicantId":   d.ApplicantID,
		"reviewerId":    d.Reviewer.UserID,
		"status":        string(to),
		"ticketUpdated": ticketUpdated,
		"roleGranted":   roleGranted,
		"dmStatus":      dm.Status,
		"outcomeStatus": published.Status,
		"outcomeId":     published.NotificationID,
	})
	return nil
}

// closeStaleTicket removes the controls of a ticket that can no longer be
// decided and tells the reviewer why. When the ticket cannot be rewritten
// the reviewer still gets the reply.
func (h *Handler) closeStaleTicket(ctx context.Context, d models.ReviewDecision, content, reply string) {
	msg := discord.Message{Content: reply, Ephemeral: true}
	if err := h.client.UpdateSourceMessage(ctx, d.Interaction, content); err != nil {
		h.logger.Warn("stale ticket update failed", map[string]interface{}{
			"applicantId": d.ApplicantID,
			"error":       err,
		})
		h.reply(ctx, d.Interaction, reply)
		return
	}
	if err := h.client.FollowUp(ctx, d.Interaction, msg); err != nil {
		h.logger.Warn("stale ticket follow-up failed", map[string]interface{}{
			"applicantId": d.ApplicantID,
			"error":       err,
		})
	}
}

func (h *Handler) sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if h.config.SideEffectTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, h.config.SideEffectTimeout)
}

// grantRole reports whether the approved role was added. A missing role or a
// failed grant is logged and skipped.
func (h *Handler) grantRole(ctx context.Context, d models.ReviewDecision, fields map[string]interface{}) bool {
	if h.config.ApprovedRoleID == "" {
		h.logger.Warn("approved role not configured", fields)
		return false
	}

	guildID := d.Interaction.GuildID
	if guildID == "" {
		guildID = h.config.GuildID
	}

	found, err := h.client.FindRole(ctx, guildID, h.config.ApprovedRoleID)
	if err != nil {
		h.logger.Error("role lookup failed", withError(fields, err))
		return false
	}
	if !found {
		h.logger.Warn("approved role not found", map[string]interface{}{
			"guildId": guildID,
			"roleId":  h.config.ApprovedRoleID,
		})
		return false
	}

	if err := h.client.GrantRole(ctx, guildID, d.ApplicantID, h.config.ApprovedRoleID); err != nil {
		h.logger.Error("role grant failed", withError(fields, err))
		return false
	}
	return true
}

func (h *Handler) reply(ctx context.Context, ref models.InteractionRef, content string) {
	if err := h.client.Respond(ctx, ref, discord.Message{Content: content, Ephemeral: true}); err != nil {
		h.logger.Warn("interaction reply failed", map[string]interface{}{"error": err})
	}
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err
	return out
}

// ApprovedMessage is the DM sent to an approved applicant.
func ApprovedMessage(text string) discord.Message {
	return discord.Message{Embeds: []discord.Embed{{
		Title:       "Application Approved",
		Description: text,
		Color:       discord.ColorGreen,
	}}}
}

// DeclinedMessage is the DM sent to a declined applicant.
func DeclinedMessage(reason string) discord.Message {
	return discord.Message{Embeds: []discord.Embed{{
		Title:       "Application Declined",
		Description: fmt.Sprintf("Unfortunately, your application was declined.\nReason: %s", reason),
		Color:       discord.ColorRed,
	}}}
}
