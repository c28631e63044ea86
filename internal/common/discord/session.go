// internal/common/discord/session.go
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"application-intake/internal/common/logger"
	"application-intake/internal/models"
)

// Session adapts a discordgo gateway session to Client.
type Session struct {
	s      *discordgo.Session
	logger logger.Logger
}

// NewSession creates a bot session with the intents the intake flow needs.
// The gateway is not opened until Open.
func NewSession(token string, log logger.Logger) (*Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsDirectMessages

	return &Session{
		s:      s,
		logger: log.WithFields(map[string]interface{}{"component": "discord"}),
	}, nil
}

// OnInteraction registers h for every interaction. discordgo runs each event
// handler on its own goroutine.
func (d *Session) OnInteraction(h InteractionHandler) {
	d.s.AddHandler(func(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
		h(context.Background(), ConvertInteraction(ic.Interaction))
	})
}

// OnMessage registers h for guild messages from human users.
func (d *Session) OnMessage(h MessageHandler) {
	d.s.AddHandler(func(s *discordgo.Session, mc *discordgo.MessageCreate) {
		if mc.Author == nil || mc.Author.Bot || mc.GuildID == "" {
			return
		}
		perms, err := s.UserChannelPermissions(mc.Author.ID, mc.ChannelID)
		if err != nil {
			d.logger.Warn("failed to resolve author permissions", map[string]interface{}{
				"userId":    mc.Author.ID,
				"channelId": mc.ChannelID,
				"error":     err,
			})
			perms = 0
		}
		h(context.Background(), ConvertMessage(mc.Message, perms))
	})
}

func (d *Session) OnReady(fn func(username string)) {
	d.s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		fn(r.User.Username)
	})
}

func (d *Session) Open() error {
	return d.s.Open()
}

func (d *Session) Close() error {
	return d.s.Close()
}

func interactionOf(ref models.InteractionRef) *discordgo.Interaction {
	return &discordgo.Interaction{ID: ref.ID, AppID: ref.AppID, Token: ref.Token}
}

func (d *Session) Respond(ctx context.Context, ref models.InteractionRef, msg Message) error {
	data := &discordgo.InteractionResponseData{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Buttons),
	}
	if msg.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return d.s.InteractionRespond(interactionOf(ref), &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
}

func (d *Session) ShowModal(ctx context.Context, ref models.InteractionRef, modal Modal) error {
	return d.s.InteractionRespond(interactionOf(ref), &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   modal.CustomID,
			Title:      modal.Title,
			Components: toModalComponents(modal.Fields),
		},
	}, discordgo.WithContext(ctx))
}

func (d *Session) UpdateSourceMessage(ctx context.Context, ref models.InteractionRef, content string) error {
	return d.s.InteractionRespond(interactionOf(ref), &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	}, discordgo.WithContext(ctx))
}

func (d *Session) FollowUp(ctx context.Context, ref models.InteractionRef, msg Message) error {
	params := &discordgo.WebhookParams{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Buttons),
	}
	if msg.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	_, err := d.s.FollowupMessageCreate(interactionOf(ref), false, params, discordgo.WithContext(ctx))
	return err
}

func (d *Session) SendChannelMessage(ctx context.Context, channelID string, msg Message) (string, error) {
	sent, err := d.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Buttons),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return sent.ID, nil
}

func (d *Session) SendDirectMessage(ctx context.Context, userID string, msg Message) error {
	ch, err := d.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}
	_, err = d.SendChannelMessage(ctx, ch.ID, msg)
	return err
}

func (d *Session) ReplyToMessage(ctx context.Context, channelID, messageID, content string) error {
	_, err := d.s.ChannelMessageSendReply(channelID, content, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	}, discordgo.WithContext(ctx))
	return err
}

func (d *Session) FindRole(ctx context.Context, guildID, roleID string) (bool, error) {
	if role, err := d.s.State.Role(guildID, roleID); err == nil && role != nil {
		return true, nil
	}
	roles, err := d.s.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.ID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (d *Session) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}
