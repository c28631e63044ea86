package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== Interactions =====

func TestConvertInteraction_Command(t *testing.T) {
	i := &discordgo.Interaction{
		ID:        "int-1",
		AppID:     "app",
		Token:     "tok",
		GuildID:   "g1",
		ChannelID: "c1",
		Type:      discordgo.InteractionApplicationCommand,
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "u1", Username: "mod"},
			Permissions: discordgo.PermissionModerateMembers,
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "unlink",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "42"},
			},
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
				Users: map[string]*discordgo.User{"42": {ID: "42", Username: "applicant"}},
			},
		},
	}

	raw := ConvertInteraction(i)
	assert.Equal(t, KindCommand, raw.Kind)
	assert.Equal(t, "unlink", raw.CommandName)
	assert.Equal(t, "42", raw.Options["user"])
	assert.Equal(t, "applicant", raw.Usernames["42"])
	assert.Equal(t, "u1", raw.Actor.UserID)
	assert.True(t, raw.Actor.Has(discordgo.PermissionModerateMembers))
	assert.Equal(t, "tok", raw.Ref.Token)
	assert.Equal(t, "g1", raw.Ref.GuildID)
}

func TestConvertInteraction_Component(t *testing.T) {
	i := &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		Message: &discordgo.Message{ID: "m1"},
		User:    &discordgo.User{ID: "u2", Username: "dm-user"},
		Data:    discordgo.MessageComponentInteractionData{CustomID: "approve_42"},
	}

	raw := ConvertInteraction(i)
	assert.Equal(t, KindComponent, raw.Kind)
	assert.Equal(t, "approve_42", raw.CustomID)
	assert.Equal(t, "m1", raw.Ref.MessageID)
	assert.Equal(t, "u2", raw.Actor.UserID)
	assert.Zero(t, raw.Actor.Permissions)
}

func TestConvertInteraction_ModalSubmit(t *testing.T) {
	i := &discordgo.Interaction{
		Type:   discordgo.InteractionModalSubmit,
		Member: &discordgo.Member{User: &discordgo.User{ID: "u3"}},
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: "application_modal",
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: "question1", Value: "AB12 CDE"},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "question2", Value: "builderman"},
				}},
			},
		},
	}

	raw := ConvertInteraction(i)
	assert.Equal(t, KindModalSubmit, raw.Kind)
	assert.Equal(t, "application_modal", raw.CustomID)
	assert.Equal(t, map[string]string{"question1": "AB12 CDE", "question2": "builderman"}, raw.Values)
}

func TestConvertInteraction_Unknown(t *testing.T) {
	raw := ConvertInteraction(&discordgo.Interaction{Type: discordgo.InteractionPing})
	assert.Equal(t, KindUnknown, raw.Kind)
}

// ===== Messages =====

func TestConvertMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "!sendmessage <#555> and <#666>",
		Author:    &discordgo.User{ID: "admin", Username: "boss"},
	}

	raw := ConvertMessage(m, discordgo.PermissionAdministrator)
	assert.Equal(t, []string{"555", "666"}, raw.MentionedChannelIDs)
	assert.True(t, raw.Author.Has(discordgo.PermissionAdministrator))
	assert.True(t, raw.Author.Has(discordgo.PermissionModerateMembers), "administrator implies every permission")
	assert.False(t, raw.AuthorIsBot)
}

func TestConvertMessage_NoMentions(t *testing.T) {
	raw := ConvertMessage(&discordgo.Message{Content: "!sendmessage", Author: &discordgo.User{ID: "x", Bot: true}}, 0)
	assert.Empty(t, raw.MentionedChannelIDs)
	assert.True(t, raw.AuthorIsBot)
}

// ===== Outbound =====

func TestToComponents(t *testing.T) {
	comps := toComponents([]Button{
		{Label: "Approve", CustomID: "approve_1", Style: ButtonSuccess},
		{Label: "Decline", CustomID: "decline_1", Style: ButtonDanger},
	})
	require.Len(t, comps, 1)
	row, ok := comps[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)
	assert.Equal(t, discordgo.SuccessButton, row.Components[0].(discordgo.Button).Style)
	assert.Equal(t, "decline_1", row.Components[1].(discordgo.Button).CustomID)

	assert.Nil(t, toComponents(nil))
}

func TestToEmbeds_ThumbnailOnlyWhenSet(t *testing.T) {
	embeds := toEmbeds([]Embed{
		{Title: "with", ThumbnailURL: "https://img"},
		{Title: "without", Fields: []EmbedField{{Name: "question1", Value: "x"}}},
	})
	require.Len(t, embeds, 2)
	require.NotNil(t, embeds[0].Thumbnail)
	assert.Equal(t, "https://img", embeds[0].Thumbnail.URL)
	assert.Nil(t, embeds[1].Thumbnail)
	assert.Len(t, embeds[1].Fields, 1)
}

func TestToModalComponents(t *testing.T) {
	rows := toModalComponents([]TextField{
		{CustomID: "question1", Label: "Westbridge Number Plate", Required: true, MinLength: 1, MaxLength: 100},
		{CustomID: "question3", Label: "Question 3", Paragraph: true, Required: true, MaxLength: 4000},
	})
	require.Len(t, rows, 2)
	first := rows[0].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	second := rows[1].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	assert.Equal(t, discordgo.TextInputShort, first.Style)
	assert.Equal(t, discordgo.TextInputParagraph, second.Style)
	assert.True(t, second.Required)
	assert.Equal(t, 1, first.MinLength)
	assert.Equal(t, 100, first.MaxLength)
	assert.Equal(t, 0, second.MinLength)
	assert.Equal(t, 4000, second.MaxLength)
}

func TestPermissionByName(t *testing.T) {
	perm, ok := PermissionByName("ModerateMembers")
	assert.True(t, ok)
	assert.Equal(t, int64(discordgo.PermissionModerateMembers), perm)

	_, ok = PermissionByName("Nope")
	assert.False(t, ok)
}
