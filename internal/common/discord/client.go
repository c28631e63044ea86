// internal/common/discord/client.go
package discord

import (
	"context"

	"application-intake/internal/models"
)

// Client is the chat-platform surface the intake handlers depend on.
type Client interface {
	// Respond answers an interaction with a message. Ephemeral messages are visible to the invoker only.
	Respond(ctx context.Context, ref models.InteractionRef, msg Message) error
	// ShowModal answers an interaction by opening a form.
	ShowModal(ctx context.Context, ref models.InteractionRef, modal Modal) error
	// UpdateSourceMessage answers a component interaction by rewriting the message that
	// carried the component. All components are removed.
	UpdateSourceMessage(ctx context.Context, ref models.InteractionRef, content string) error
	// FollowUp sends a further message on an interaction that was already answered.
	FollowUp(ctx context.Context, ref models.InteractionRef, msg Message) error

	SendChannelMessage(ctx context.Context, channelID string, msg Message) (string, error)
	SendDirectMessage(ctx context.Context, userID string, msg Message) error
	ReplyToMessage(ctx context.Context, channelID, messageID, content string) error

	// FindRole reports whether roleID exists in the guild.
	FindRole(ctx context.Context, guildID, roleID string) (bool, error)
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
}

type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

type Button struct {
	Label    string
	CustomID string
	Style    ButtonStyle
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

type Embed struct {
	Title        string
	Description  string
	Color        int
	ThumbnailURL string
	Fields       []EmbedField
}

// Message is an outbound message. Buttons render as a single row.
type Message struct {
	Content   string
	Embeds    []Embed
	Buttons   []Button
	Ephemeral bool
}

// TextField is one modal input. Zero lengths leave the platform defaults.
type TextField struct {
	CustomID  string
	Label     string
	Paragraph bool
	Required  bool
	MinLength int
	MaxLength int
}

// Modal is a form of text fields, one per row.
type Modal struct {
	CustomID string
	Title    string
	Fields   []TextField
}

// Embed colours.
const (
	ColorPink   = 0xFF69B4
	ColorYellow = 0xFFFF00
	ColorGreen  = 0x57F287
	ColorRed    = 0xED4245
)

// InteractionKind is the raw shape of an inbound interaction.
type InteractionKind int

const (
	KindUnknown InteractionKind = iota
	KindCommand
	KindComponent
	KindModalSubmit
)

// RawInteraction is an inbound interaction converted out of the platform
// library, before classification.
type RawInteraction struct {
	Kind        InteractionKind
	Ref         models.InteractionRef
	Actor       models.Actor
	CommandName string
	Options     map[string]string
	Usernames   map[string]string // user id -> username for user options
	CustomID    string
	Values      map[string]string
}

// RawMessage is an inbound text message.
type RawMessage struct {
	GuildID             string
	ChannelID           string
	MessageID           string
	Author              models.Actor
	AuthorIsBot         bool
	Content             string
	MentionedChannelIDs []string
}

// InteractionHandler receives converted interactions.
type InteractionHandler func(ctx context.Context, in RawInteraction)

// MessageHandler receives converted guild messages.
type MessageHandler func(ctx context.Context, msg RawMessage)
