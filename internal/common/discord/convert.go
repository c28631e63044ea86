// internal/common/discord/convert.go
package discord

import (
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"application-intake/internal/models"
)

var channelMention = regexp.MustCompile(`<#(\d+)>`)

// ConvertInteraction flattens a discordgo interaction into a RawInteraction.
func ConvertInteraction(i *discordgo.Interaction) RawInteraction {
	raw := RawInteraction{
		Ref: models.InteractionRef{
			ID:        i.ID,
			AppID:     i.AppID,
			Token:     i.Token,
			GuildID:   i.GuildID,
			ChannelID: i.ChannelID,
		},
		Actor: interactionActor(i),
	}
	if i.Message != nil {
		raw.Ref.MessageID = i.Message.ID
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		raw.Kind = KindCommand
		raw.CommandName = data.Name
		raw.Options = make(map[string]string, len(data.Options))
		for _, opt := range data.Options {
			if opt == nil {
				continue
			}
			raw.Options[opt.Name] = optionString(opt.Value)
		}
		if data.Resolved != nil && len(data.Resolved.Users) > 0 {
			raw.Usernames = make(map[string]string, len(data.Resolved.Users))
			for id, u := range data.Resolved.Users {
				if u != nil {
					raw.Usernames[id] = u.Username
				}
			}
		}
	case discordgo.InteractionMessageComponent:
		raw.Kind = KindComponent
		raw.CustomID = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		raw.Kind = KindModalSubmit
		raw.CustomID = data.CustomID
		raw.Values = modalValues(data.Components)
	default:
		raw.Kind = KindUnknown
	}
	return raw
}

// ConvertMessage flattens a discordgo message. permissions are the author's
// resolved channel permissions; messages do not carry them.
func ConvertMessage(m *discordgo.Message, permissions int64) RawMessage {
	raw := RawMessage{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		Content:   m.Content,
	}
	if m.Author != nil {
		raw.Author = models.Actor{
			UserID:      m.Author.ID,
			Username:    m.Author.Username,
			Permissions: effectivePermissions(permissions),
		}
		raw.AuthorIsBot = m.Author.Bot
	}
	for _, match := range channelMention.FindAllStringSubmatch(m.Content, -1) {
		raw.MentionedChannelIDs = append(raw.MentionedChannelIDs, match[1])
	}
	return raw
}

func interactionActor(i *discordgo.Interaction) models.Actor {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return models.Actor{
			UserID:      i.Member.User.ID,
			Username:    i.Member.User.Username,
			Permissions: effectivePermissions(i.Member.Permissions),
		}
	case i.User != nil:
		return models.Actor{UserID: i.User.ID, Username: i.User.Username}
	default:
		return models.Actor{}
	}
}

func optionString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprint(val)
	}
}

func modalValues(rows []discordgo.MessageComponent) map[string]string {
	values := make(map[string]string)
	for _, row := range rows {
		var children []discordgo.MessageComponent
		switch r := row.(type) {
		case *discordgo.ActionsRow:
			children = r.Components
		case discordgo.ActionsRow:
			children = r.Components
		}
		for _, child := range children {
			switch input := child.(type) {
			case *discordgo.TextInput:
				values[input.CustomID] = input.Value
			case discordgo.TextInput:
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

func toEmbeds(embeds []Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		me := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		if e.ThumbnailURL != "" {
			me.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		out = append(out, me)
	}
	return out
}

func toComponents(buttons []Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}
	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		row.Components = append(row.Components, discordgo.Button{
			Label:    b.Label,
			CustomID: b.CustomID,
			Style:    toButtonStyle(b.Style),
		})
	}
	return []discordgo.MessageComponent{row}
}

func toButtonStyle(s ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case ButtonSuccess:
		return discordgo.SuccessButton
	case ButtonDanger:
		return discordgo.DangerButton
	case ButtonSecondary:
		return discordgo.SecondaryButton
	default:
		return discordgo.PrimaryButton
	}
}

func toModalComponents(fields []TextField) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, len(fields))
	for _, f := range fields {
		style := discordgo.TextInputShort
		if f.Paragraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  f.CustomID,
					Label:     f.Label,
					Style:     style,
					Required:  f.Required,
					MinLength: f.MinLength,
					MaxLength: f.MaxLength,
				},
			},
		})
	}
	return rows
}
