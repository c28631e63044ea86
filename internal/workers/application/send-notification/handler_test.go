// internal/workers/application/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"errors"
	"testing"
	"time"

	"application-intake/internal/common/discord"
	"application-intake/internal/common/discord/discordtest"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/metrics"
	"application-intake/internal/models"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) PublishOutcome(ctx context.Context, outcome models.DecisionOutcome) (string, error) {
	args := m.Called(ctx, outcome)
	return args.String(0), args.Error(1)
}

func newTestHandler(t *testing.T, client discord.Client, sink OutcomeSink) *Handler {
	cfg := LoadConfig()
	cfg.ReviewChannelID = "review-1"
	cfg.OutcomesEnabled = sink != nil
	h := NewHandler(cfg, client, sink, &testLogger{t: t})
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return h
}

// ==========================
// Applicant
// ==========================

func TestNotifyApplicant_Sent(t *testing.T) {
	client := new(discordtest.MockClient)
	msg := discord.Message{Content: "hello"}
	client.On("SendDirectMessage", mock.Anything, "42", msg).Return(nil)

	before := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(TargetApplicant, StatusSent))
	out := newTestHandler(t, client, nil).NotifyApplicant(context.Background(), "42", msg)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, "2026-01-02T03:04:05Z", out.SentAt)
	_, err := uuid.Parse(out.NotificationID)
	assert.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(TargetApplicant, StatusSent)))
	client.AssertExpectations(t)
}

func TestNotifyApplicant_DMsDisabled(t *testing.T) {
	client := new(discordtest.MockClient)
	client.On("SendDirectMessage", mock.Anything, "42", mock.Anything).
		Return(errors.New("Cannot send messages to this user"))

	out := newTestHandler(t, client, nil).NotifyApplicant(context.Background(), "42", discord.Message{Content: "hi"})

	assert.Equal(t, StatusFailed, out.Status)
	assert.NotEmpty(t, out.NotificationID)
}

func TestNotifyApplicant_AppliesTimeout(t *testing.T) {
	client := new(discordtest.MockClient)
	client.On("SendDirectMessage", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), "42", mock.Anything).Return(nil)

	out := newTestHandler(t, client, nil).NotifyApplicant(context.Background(), "42", discord.Message{})
	assert.Equal(t, StatusSent, out.Status)
	client.AssertExpectations(t)
}

// ==========================
// Review channel
// ==========================

func TestNotifyReviewChannel_PostsTicket(t *testing.T) {
	client := new(discordtest.MockClient)
	answers := []models.Answer{
		{FieldID: "question1", Label: "Westbridge Number Plate", Value: "LNS 001"},
		{FieldID: "question2", Label: "Roblox Username", Value: "builderman"},
	}
	client.On("SendChannelMessage", mock.Anything, "review-1", mock.MatchedBy(func(msg discord.Message) bool {
		if len(msg.Embeds) != 1 || len(msg.Buttons) != 2 {
			return false
		}
		e := msg.Embeds[0]
		return e.Title == "New Application" &&
			e.Description == "New application submitted by <@42>" &&
			e.Color == discord.ColorYellow &&
			e.ThumbnailURL == "https://tr.rbxcdn.com/avatar.png" &&
			len(e.Fields) == 2 && e.Fields[0].Value == "LNS 001" && e.Fields[1].Value == "builderman" &&
			msg.Buttons[0].CustomID == "approve_42" && msg.Buttons[1].CustomID == "decline_42"
	})).Return("msg-9", nil)

	out := newTestHandler(t, client, nil).NotifyReviewChannel(context.Background(),
		&models.ApplicationRecord{UserID: "42"}, answers, "https://tr.rbxcdn.com/avatar.png")

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, "msg-9", out.MessageID)
	client.AssertExpectations(t)
}

func TestNotifyReviewChannel_Failure(t *testing.T) {
	client := new(discordtest.MockClient)
	client.On("SendChannelMessage", mock.Anything, "review-1", mock.Anything).Return("", errors.New("missing access"))

	out := newTestHandler(t, client, nil).NotifyReviewChannel(context.Background(),
		&models.ApplicationRecord{UserID: "42"}, nil, "")

	assert.Equal(t, StatusFailed, out.Status)
	assert.Empty(t, out.MessageID)
}

func TestTicketMessage_NoAvatar(t *testing.T) {
	msg := TicketMessage("42", nil, "")
	require.Len(t, msg.Embeds, 1)
	assert.Empty(t, msg.Embeds[0].ThumbnailURL)
	assert.Equal(t, discord.ButtonSuccess, msg.Buttons[0].Style)
	assert.Equal(t, discord.ButtonDanger, msg.Buttons[1].Style)
	assert.Equal(t, "Approve", msg.Buttons[0].Label)
	assert.Equal(t, "Decline", msg.Buttons[1].Label)
}

// ==========================
// Outcomes
// ==========================

func TestPublishOutcome_Sent(t *testing.T) {
	sink := new(mockSink)
	sink.On("PublishOutcome", mock.Anything, mock.MatchedBy(func(o models.DecisionOutcome) bool {
		return o.EventID != "" && o.ApplicantID == "42" && o.Status == models.StatusApproved
	})).Return("sns-1", nil)

	out := newTestHandler(t, new(discordtest.MockClient), sink).PublishOutcome(context.Background(), models.DecisionOutcome{
		ApplicantID: "42",
		Status:      models.StatusApproved,
	})

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, "sns-1", out.MessageID)
	sink.AssertExpectations(t)
}

func TestPublishOutcome_KeepsEventID(t *testing.T) {
	sink := new(mockSink)
	sink.On("PublishOutcome", mock.Anything, mock.Anything).Return("sns-1", nil)

	out := newTestHandler(t, new(discordtest.MockClient), sink).PublishOutcome(context.Background(), models.DecisionOutcome{
		EventID: "evt-1",
	})
	assert.Equal(t, "evt-1", out.NotificationID)
}

func TestPublishOutcome_FailureIsReported(t *testing.T) {
	sink := new(mockSink)
	sink.On("PublishOutcome", mock.Anything, mock.Anything).Return("", errors.New("throttled"))

	out := newTestHandler(t, new(discordtest.MockClient), sink).PublishOutcome(context.Background(), models.DecisionOutcome{})
	assert.Equal(t, StatusFailed, out.Status)
}

func TestPublishOutcome_Disabled(t *testing.T) {
	out := newTestHandler(t, new(discordtest.MockClient), nil).PublishOutcome(context.Background(), models.DecisionOutcome{})
	assert.Equal(t, StatusDisabled, out.Status)
	assert.NotEmpty(t, out.NotificationID)
}

// ==========================
// Execute
// ==========================

func TestExecute_Targets(t *testing.T) {
	client := new(discordtest.MockClient)
	client.On("SendDirectMessage", mock.Anything, "42", mock.Anything).Return(nil)
	client.On("SendChannelMessage", mock.Anything, "review-1", mock.Anything).Return("m-1", nil)
	h := newTestHandler(t, client, nil)

	out, err := h.Execute(context.Background(), &Input{Target: TargetApplicant, RecipientID: "42"})
	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)

	out, err = h.Execute(context.Background(), &Input{Target: TargetReviewChannel})
	require.NoError(t, err)
	assert.Equal(t, "m-1", out.MessageID)

	_, err = h.Execute(context.Background(), &Input{Target: "sms"})
	assert.True(t, errors.Is(err, ErrUnknownTarget))
}
