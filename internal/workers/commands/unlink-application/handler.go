// internal/workers/commands/unlink-application/handler.go
package unlinkapplication

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
	TaskType = "unlink-application"
)

const ReplyMissingTarget = "Please specify a user to unlink."

var (
	ErrDeleteFailed = errors.New("DELETE_FAILED")
)

type Store interface {
	Delete(ctx context.Context, userID string) (bool, error)
}

type Handler struct {
	config *Config
	store  Store
	client discord.Client
	errors *apperrors.Handler
	logger logger.Logger
}

func NewHandler(config *Config, store Store, client discord.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"worker": TaskType})
	return &Handler{
		config: config,
		store:  store,
		client: client,
		errors: apperrors.NewHandler(scoped),
		logger: scoped,
	}
}

// Handle deletes the target's application. The submission claim is kept, so
// an unlinked user still cannot apply again.
func (h *Handler) Handle(ctx context.Context, cmd models.CommandInvocation) error {
	if !cmd.Actor.Has(h.config.ModeratorPermission) {
		h.logger.Warn("unlink denied", map[string]interface{}{
			"userId":     cmd.Actor.UserID,
			"permission": h.config.PermissionName,
		})
		h.reply(ctx, cmd.Interaction, apperrors.ReplyUnauthorized)
		return nil
	}

	if cmd.TargetUserID == "" {
		h.reply(ctx, cmd.Interaction, ReplyMissingTarget)
		return nil
	}

	existed, err := h.store.Delete(ctx, cmd.TargetUserID)
	if err != nil {
		stdErr := apperrors.NewPersistenceFailedError("delete application", err)
		h.reply(ctx, cmd.Interaction, h.errors.ReplyFor(stdErr))
		return fmt.Errorf("%w: %v", ErrDeleteFailed, stdErr)
	}

	if !existed {
		h.reply(ctx, cmd.Interaction, fmt.Sprintf("No application data found for <@%s>.", cmd.TargetUserID))
		return nil
	}

	h.logger.Info("application unlinked", map[string]interface{}{
		"userId":      cmd.TargetUserID,
		"moderatorId": cmd.Actor.UserID,
	})
	h.reply(ctx, cmd.Interaction, fmt.Sprintf("Application data for <@%s> has been removed.", cmd.TargetUserID))
	return nil
}

func (h *Handler) reply(ctx context.Context, ref models.InteractionRef, content string) {
	if err := h.client.Respond(ctx, ref, discord.Message{Content: content, Ephemeral: true}); err != nil {
		h.logger.Warn("interaction reply failed", map[string]interface{}{"error": err})
	}
}
