// internal/workers/commands/post-recruitment/handler.go
package postrecruitment

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
	TaskType = "post-recruitment"
)

const ReplyNoChannel = "Please mention a valid channel."

var (
	ErrPostFailed = errors.New("POST_FAILED")
)

// Handler posts the recruitment prompt with the apply controls.
type Handler struct {
	config *Config
	client discord.Client
	logger logger.Logger
}

func NewHandler(config *Config, client discord.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"worker": TaskType}),
	}
}

func (h *Handler) Handle(ctx context.Context, cmd models.AdminMessageCommand) error {
	if !cmd.Author.Has(discord.PermissionAdministrator) {
		h.logger.Warn("recruitment post denied", map[string]interface{}{"userId": cmd.Author.UserID})
		h.reply(ctx, cmd, apperrors.ReplyUnauthorized)
		return nil
	}

	if len(cmd.MentionedChannelIDs) == 0 {
		h.reply(ctx, cmd, ReplyNoChannel)
		return nil
	}

	channelID := cmd.MentionedChannelIDs[0]
	messageID, err := h.client.SendChannelMessage(ctx, channelID, h.Prompt())
	if err != nil {
		h.logger.Error("recruitment post failed", map[string]interface{}{
			"channelId": channelID,
			"error":     err,
		})
		return fmt.Errorf("%w: %v", ErrPostFailed, err)
	}

	h.logger.Info("recruitment posted", map[string]interface{}{
		"channelId": channelID,
		"messageId": messageID,
		"userId":    cmd.Author.UserID,
	})
	return nil
}

// Prompt is the recruitment message.
func (h *Handler) Prompt() discord.Message {
	return discord.Message{
		Embeds: []discord.Embed{{
			Title:        h.config.Title,
			Description:  h.config.Description,
			Color:        discord.ColorPink,
			ThumbnailURL: h.config.ThumbnailURL,
		}},
		Buttons: []discord.Button{
			{Label: "Apply", CustomID: models.CustomIDApplyButton, Style: discord.ButtonSuccess},
			{Label: "Fast Track - Partnered Company", CustomID: models.CustomIDFastTrackButton, Style: discord.ButtonDanger},
		},
	}
}

func (h *Handler) reply(ctx context.Context, cmd models.AdminMessageCommand, content string) {
	if err := h.client.ReplyToMessage(ctx, cmd.ChannelID, cmd.MessageID, content); err != nil {
		h.logger.Warn("message reply failed", map[string]interface{}{"error": err})
	}
}
