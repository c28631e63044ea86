// Package discordtest provides a testify mock of discord.Client.
package discordtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"application-intake/internal/common/discord"
	"application-intake/internal/models"
)

type MockClient struct {
	mock.Mock
}

var _ discord.Client = (*MockClient)(nil)

func (m *MockClient) Respond(ctx context.Context, ref models.InteractionRef, msg discord.Message) error {
	return m.Called(ctx, ref, msg).Error(0)
}

func (m *MockClient) ShowModal(ctx context.Context, ref models.InteractionRef, modal discord.Modal) error {
	return m.Called(ctx, ref, modal).Error(0)
}

func (m *MockClient) UpdateSourceMessage(ctx context.Context, ref models.InteractionRef, content string) error {
	return m.Called(ctx, ref, content).Error(0)
}

func (m *MockClient) FollowUp(ctx context.Context, ref models.InteractionRef, msg discord.Message) error {
	return m.Called(ctx, ref, msg).Error(0)
}

func (m *MockClient) SendChannelMessage(ctx context.Context, channelID string, msg discord.Message) (string, error) {
	args := m.Called(ctx, channelID, msg)
	return args.String(0), args.Error(1)
}

func (m *MockClient) SendDirectMessage(ctx context.Context, userID string, msg discord.Message) error {
	return m.Called(ctx, userID, msg).Error(0)
}

func (m *MockClient) ReplyToMessage(ctx context.Context, channelID, messageID, content string) error {
	return m.Called(ctx, channelID, messageID, content).Error(0)
}

func (m *MockClient) FindRole(ctx context.Context, guildID, roleID string) (bool, error) {
	args := m.Called(ctx, guildID, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClient) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	return m.Called(ctx, guildID, userID, roleID).Error(0)
}

// Ephemeral matches an ephemeral message with the given content.
func Ephemeral(content string) interface{} {
	return mock.MatchedBy(func(msg discord.Message) bool {
		return msg.Ephemeral && msg.Content == content
	})
}
