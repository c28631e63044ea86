// internal/workers/commands/application-info/handler.go
package applicationinfo

import (
	"context"
	"errors"
	"fmt"

	"application-intake/internal/common/discord"
	"application-intake/internal/common/logger"
	"application-intake/internal/models"
	applicationstore "application-intake/internal/workers/data-access/application-store"
)

const (
	TaskType = "application-info"
)

const (
	ReplyNoData     = "No application data found. Please submit an application first."
	ReplyFetchError = "Error fetching your info."
	notSet          = "Not set"
)

var (
	ErrFetchFailed = errors.New("FETCH_FAILED")
)

type Store interface {
	Fetch(ctx context.Context, userID string) (*models.ApplicationRecord, error)
}

type AvatarResolver interface {
	ResolveAvatar(ctx context.Context, handle string) (string, bool)
}

type Handler struct {
	store   Store
	avatars AvatarResolver
	client  discord.Client
	logger  logger.Logger
}

func NewHandler(store Store, avatars AvatarResolver, client discord.Client, log logger.Logger) *Handler {
	return &Handler{
		store:   store,
		avatars: avatars,
		client:  client,
		logger:  log.WithFields(map[string]interface{}{"worker": TaskType}),
	}
}

// Handle replies with the stored application of the target user. No
// enrichment lookup is made when there is no record.
func (h *Handler) Handle(ctx context.Context, cmd models.CommandInvocation) error {
	userID, username := cmd.Target()

	rec, err := h.store.Fetch(ctx, userID)
	if errors.Is(err, applicationstore.ErrNotFound) {
		h.respond(ctx, cmd.Interaction, discord.Message{Content: ReplyNoData, Ephemeral: true})
		return nil
	}
	if err != nil {
		h.logger.Error("fetch application failed", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
		h.respond(ctx, cmd.Interaction, discord.Message{Content: ReplyFetchError, Ephemeral: true})
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	avatarURL, _ := h.avatars.ResolveAvatar(ctx, rec.ProfileHandle)
	if username == "" {
		username = userID
	}

	h.respond(ctx, cmd.Interaction, discord.Message{
		Embeds:    []discord.Embed{InfoEmbed(username, rec, avatarURL)},
		Ephemeral: true,
	})
	return nil
}

func (h *Handler) respond(ctx context.Context, ref models.InteractionRef, msg discord.Message) {
	if err := h.client.Respond(ctx, ref, msg); err != nil {
		h.logger.Warn("interaction reply failed", map[string]interface{}{"error": err})
	}
}

func InfoEmbed(username string, rec *models.ApplicationRecord, avatarURL string) discord.Embed {
	return discord.Embed{
		Title:        fmt.Sprintf("%s's Info", username),
		Color:        discord.ColorPink,
		ThumbnailURL: avatarURL,
		Fields: []discord.EmbedField{
			{Name: "Westbridge Plate", Value: orNotSet(rec.PlateIdentifier), Inline: true},
			{Name: "Roblox Username", Value: orNotSet(rec.ProfileHandle), Inline: true},
			{Name: "Status", Value: orNotSet(string(rec.Status)), Inline: true},
		},
	}
}

func orNotSet(v string) string {
	if v == "" {
		return notSet
	}
	return v
}
