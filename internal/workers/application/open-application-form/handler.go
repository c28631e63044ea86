// internal/workers/application/open-application-form/handler.go
package openapplicationform

import (
	"context"
	"errors"
	"fmt"

	"application-intake/internal/common/discord"
	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
	"application-intake/internal/models"
)

const (
	TaskType = "open-application-form"
)

var (
	ErrUnknownFormKind = errors.New("UNKNOWN_FORM_KIND")
	ErrShowFormFailed  = errors.New("SHOW_FORM_FAILED")
)

// Guard reserves the single submission a user is allowed.
type Guard interface {
	TryReserve(ctx context.Context, userID string, kind models.FormKind) (bool, error)
}

type Handler struct {
	guard  Guard
	client discord.Client
	errors *apperrors.Handler
	logger logger.Logger
}

func NewHandler(guard Guard, client discord.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"worker": TaskType})
	return &Handler{
		guard:  guard,
		client: client,
		errors: apperrors.NewHandler(scoped),
		logger: scoped,
	}
}

// Handle claims the user's submission slot and shows the form. A user who
// already holds a claim is told so and no form is shown.
func (h *Handler) Handle(ctx context.Context, req models.FormOpenRequest) error {
	form, ok := models.FormFor(req.Kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormKind, req.Kind)
	}

	reserved, err := h.guard.TryReserve(ctx, req.Actor.UserID, req.Kind)
	if err != nil {
		stdErr := apperrors.NewPersistenceFailedError("reserve submission", err)
		h.reply(ctx, req.Interaction, h.errors.ReplyFor(stdErr))
		return stdErr
	}
	if !reserved {
		h.reply(ctx, req.Interaction, apperrors.ReplyAlreadyApplied)
		return nil
	}

	if err := h.client.ShowModal(ctx, req.Interaction, BuildModal(form)); err != nil {
		h.logger.Error("show form failed", map[string]interface{}{
			"userId":   req.Actor.UserID,
			"formKind": string(req.Kind),
			"error":    err,
		})
		return fmt.Errorf("%w: %v", ErrShowFormFailed, err)
	}

	h.logger.Info("form shown", map[string]interface{}{
		"userId":   req.Actor.UserID,
		"formKind": string(req.Kind),
	})
	return nil
}

func (h *Handler) reply(ctx context.Context, ref models.InteractionRef, content string) {
	if err := h.client.Respond(ctx, ref, discord.Message{Content: content, Ephemeral: true}); err != nil {
		h.logger.Warn("interaction reply failed", map[string]interface{}{"error": err})
	}
}

// BuildModal renders form as a modal with every field required and the
// same length limits the submission validator applies.
func BuildModal(form models.FormDefinition) discord.Modal {
	fields := make([]discord.TextField, 0, len(form.Fields))
	for _, f := range form.Fields {
		field := discord.TextField{
			CustomID:  f.ID,
			Label:     f.Label,
			Paragraph: f.Paragraph,
			Required:  true,
			MaxLength: f.MaxLength(),
		}
		if f.Persisted() {
			field.MinLength = 1
		}
		fields = append(fields, field)
	}
	return discord.Modal{
		CustomID: form.ModalID,
		Title:    form.Title,
		Fields:   fields,
	}
}
