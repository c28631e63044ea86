// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"application-intake/internal/common/discord"
	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/observability"
	"application-intake/internal/models"
	sendnotification "application-intake/internal/workers/application/send-notification"
	validateapplicationdata "application-intake/internal/workers/application/validate-application-data"
)

const (
	TaskType = "create-application-record"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrUnknownFormKind      = errors.New("UNKNOWN_FORM_KIND")
	ErrReviewTicketFailed   = errors.New("REVIEW_TICKET_FAILED")
)

type Handler struct {
	config    *Config
	validator Validator
	store     Store
	claims    Releaser
	avatars   AvatarResolver
	notifier  Notifier
	client    discord.Client
	recorder  observability.Recorder
	errors    *apperrors.Handler
	logger    logger.Logger
}

func NewHandler(
	config *Config,
	validator Validator,
	store Store,
	claims Releaser,
	avatars AvatarResolver,
	notifier Notifier,
	client discord.Client,
	recorder observability.Recorder,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"worker": TaskType})
	return &Handler{
		config:    config,
		validator: validator,
		store:     store,
		claims:    claims,
		avatars:   avatars,
		notifier:  notifier,
		client:    client,
		recorder:  recorder,
		errors:    apperrors.NewHandler(scoped),
		logger:    scoped,
	}
}

// Handle stores a submitted form, confirms it to the applicant, then posts
// the review ticket and the DM. A rejected or unstored submission releases
// the user's reservation. Enrichment and DM failures never abort the
// submission; a ticket that could not be posted is returned as
// ErrReviewTicketFailed for reconciliation.
func (h *Handler) Handle(ctx context.Context, sub models.FormSubmission) error {
	start := time.Now()
	kind := string(sub.Kind)

	form, ok := models.FormFor(sub.Kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormKind, sub.Kind)
	}

	if out, err := h.validator.Execute(ctx, &validateapplicationdata.Input{Kind: sub.Kind, Answers: sub.Answers}); err != nil {
		fields := map[string]interface{}{"userId": sub.Actor.UserID, "formKind": kind}
		if out != nil {
			fields["validationErrors"] = out.ValidationErrors
		}
		h.logger.Warn("submission rejected", fields)
		h.release(ctx, sub.Actor.UserID)
		h.reply(ctx, sub.Interaction, h.errors.ReplyFor(err))
		h.record(ctx, start, kind, statusInvalid)
		return err
	}

	rec := &models.ApplicationRecord{
		UserID:          sub.Actor.UserID,
		PlateIdentifier: sub.Answers[models.FieldPlateIdentifier],
		ProfileHandle:   sub.Answers[models.FieldProfileHandle],
		FormKind:        sub.Kind,
		Status:          models.StatusPendingReview,
	}
	if err := h.store.Upsert(ctx, rec); err != nil {
		stdErr := apperrors.NewPersistenceFailedError("upsert application", err)
		h.release(ctx, rec.UserID)
		h.reply(ctx, sub.Interaction, h.errors.ReplyFor(stdErr))
		h.record(ctx, start, kind, statusFailed)
		return fmt.Errorf("%w: %v", ErrDatabaseInsertFailed, stdErr)
	}

	// The record is stored; answer inside the interaction window.
	h.reply(ctx, sub.Interaction, ReplySubmitted)

	sideCtx, cancel := h.sideEffectContext(ctx)
	defer cancel()

	avatarURL, resolved := h.resolveAvatar(sideCtx, rec.ProfileHandle)

	ticket := h.notifier.NotifyReviewChannel(sideCtx, rec, form.OrderedAnswers(sub.Answers), avatarURL)
	if ticket.Status != sendnotification.StatusSent {
		h.logger.Error("review ticket not posted, application needs manual review", map[string]interface{}{
			"userId":         rec.UserID,
			"formKind":       kind,
			"avatarResolved": resolved,
			"notificationId": ticket.NotificationID,
		})
		h.record(sideCtx, start, kind, statusTicketFailed)
		return fmt.Errorf("%w: user %s", ErrReviewTicketFailed, rec.UserID)
	}

	dm := h.notifier.NotifyApplicant(sideCtx, rec.UserID, discord.Message{Content: h.config.SubmittedMessage})

	h.logger.Info("application submitted", map[string]interface{}{
		"userId":         rec.UserID,
		"formKind":       kind,
		"avatarResolved": resolved,
		"ticketId":       ticket.MessageID,
		"dmStatus":       dm.Status,
	})
	h.record(sideCtx, start, kind, statusSubmitted)
	return nil
}

func (h *Handler) sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if h.config.SideEffectTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, h.config.SideEffectTimeout)
}

func (h *Handler) resolveAvatar(ctx context.Context, handle string) (string, bool) {
	if h.config.EnrichmentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.EnrichmentTimeout)
		defer cancel()
	}
	return h.avatars.ResolveAvatar(ctx, handle)
}

func (h *Handler) release(ctx context.Context, userID string) {
	if h.claims == nil {
		return
	}
	if err := h.claims.Release(ctx, userID); err != nil {
		h.logger.Warn("reservation not released, user cannot reopen the form", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}
}

func (h *Handler) reply(ctx context.Context, ref models.InteractionRef, content string) {
	if err := h.client.Respond(ctx, ref, discord.Message{Content: content, Ephemeral: true}); err != nil {
		h.logger.Warn("interaction reply failed", map[string]interface{}{"error": err})
	}
}

func (h *Handler) record(ctx context.Context, start time.Time, kind, status string) {
	if h.recorder == nil {
		return
	}
	h.recorder.RecordSubmission(ctx, kind, status)
	h.recorder.RecordSubmissionDuration(ctx, time.Since(start), kind)
}
