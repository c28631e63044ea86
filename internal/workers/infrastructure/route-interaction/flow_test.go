// internal/workers/infrastructure/route-interaction/flow_test.go
package routeinteraction_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"application-intake/internal/common/discord"
	"application-intake/internal/common/logger"
	"application-intake/internal/models"
	car "application-intake/internal/workers/application/create-application-record"
	oaf "application-intake/internal/workers/application/open-application-form"
	rs "application-intake/internal/workers/application/reserve-submission"
	rd "application-intake/internal/workers/application/review-decision"
	sn "application-intake/internal/workers/application/send-notification"
	vad "application-intake/internal/workers/application/validate-application-data"
	ai "application-intake/internal/workers/commands/application-info"
	ua "application-intake/internal/workers/commands/unlink-application"
	as "application-intake/internal/workers/data-access/application-store"
	ri "application-intake/internal/workers/infrastructure/route-interaction"
	ra "application-intake/internal/workers/profile/resolve-avatar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test doubles
// ==========================

// memoryStore mirrors the application store's semantics in memory.
type memoryStore struct {
	mu      sync.Mutex
	records map[string]models.ApplicationRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]models.ApplicationRecord)}
}

func (s *memoryStore) Upsert(_ context.Context, rec *models.ApplicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *rec
	stored.Status = models.StatusPendingReview
	stored.SubmittedAt = time.Now().UTC()
	s.records[rec.UserID] = stored
	return nil
}

func (s *memoryStore) Fetch(_ context.Context, userID string) (*models.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", as.ErrNotFound, userID)
	}
	return &rec, nil
}

func (s *memoryStore) Delete(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[userID]
	delete(s.records, userID)
	return ok, nil
}

func (s *memoryStore) Transition(_ context.Context, userID string, to models.ApplicationStatus, reviewerID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return fmt.Errorf("%w: %s", as.ErrNotFound, userID)
	}
	if rec.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", as.ErrAlreadyDecided, userID)
	}
	now := time.Now().UTC()
	rec.Status, rec.DecidedBy, rec.DeclineReason, rec.DecidedAt = to, reviewerID, reason, &now
	s.records[userID] = rec
	return nil
}

type sent struct {
	kind   string
	target string
	msg    discord.Message
	modal  discord.Modal
	text   string
}

// recordingClient captures every platform call. Calls made with a finished
// context fail the way the platform API would and are not recorded.
type recordingClient struct {
	mu    sync.Mutex
	calls []sent
}

func (c *recordingClient) add(ctx context.Context, s sent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, s)
	return nil
}

func (c *recordingClient) take() []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.calls
	c.calls = nil
	return out
}

func (c *recordingClient) Respond(ctx context.Context, ref models.InteractionRef, msg discord.Message) error {
	return c.add(ctx, sent{kind: "respond", target: ref.ID, msg: msg, text: msg.Content})
}

func (c *recordingClient) ShowModal(ctx context.Context, ref models.InteractionRef, modal discord.Modal) error {
	return c.add(ctx, sent{kind: "modal", target: ref.ID, modal: modal, text: modal.CustomID})
}

func (c *recordingClient) UpdateSourceMessage(ctx context.Context, ref models.InteractionRef, content string) error {
	return c.add(ctx, sent{kind: "update", target: ref.MessageID, text: content})
}

func (c *recordingClient) FollowUp(ctx context.Context, ref models.InteractionRef, msg discord.Message) error {
	return c.add(ctx, sent{kind: "followup", target: ref.ID, msg: msg, text: msg.Content})
}

func (c *recordingClient) SendChannelMessage(ctx context.Context, channelID string, msg discord.Message) (string, error) {
	if err := c.add(ctx, sent{kind: "channel", target: channelID, msg: msg}); err != nil {
		return "", err
	}
	return "ticket-1", nil
}

func (c *recordingClient) SendDirectMessage(ctx context.Context, userID string, msg discord.Message) error {
	return c.add(ctx, sent{kind: "dm", target: userID, msg: msg, text: msg.Content})
}

func (c *recordingClient) ReplyToMessage(ctx context.Context, channelID, messageID, content string) error {
	return c.add(ctx, sent{kind: "reply", target: messageID, text: content})
}

func (c *recordingClient) FindRole(_ context.Context, guildID, roleID string) (bool, error) {
	return roleID == "role-approved", nil
}

func (c *recordingClient) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.add(ctx, sent{kind: "role", target: userID, text: roleID})
}

func profileService(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/usernames/users", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []map[string]interface{}{{"id": 156}}})
	})
	mux.HandleFunc("/v1/users/avatar", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []map[string]interface{}{{"imageUrl": "https://tr.rbxcdn.com/156.png"}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// slowProfileService answers the id lookup late and never answers the
// thumbnail lookup before the caller gives up.
func slowProfileService(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/usernames/users", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(120 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []map[string]interface{}{{"id": 156}}})
	})
	mux.HandleFunc("/v1/users/avatar", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func kinds(calls []sent) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.kind)
	}
	return out
}

type journey struct {
	router *ri.Router
	store  *memoryStore
	client *recordingClient
}

func newJourney(t *testing.T, routerCfg *ri.Config, submitCfg *car.Config, profilesURL string) *journey {
	log := logger.NewTestLogger(t)
	j := &journey{store: newMemoryStore(), client: &recordingClient{}}

	avatarCfg := ra.LoadConfig()
	avatarCfg.UsersBaseURL = profilesURL
	avatarCfg.ThumbnailsBaseURL = profilesURL
	avatars := ra.NewHandler(avatarCfg, log)

	notifyCfg := sn.LoadConfig()
	notifyCfg.ReviewChannelID = "review"
	dispatcher := sn.NewHandler(notifyCfg, j.client, nil, log)

	reviewCfg := rd.LoadConfig()
	reviewCfg.ApprovedRoleID = "role-approved"

	reserve := rs.NewHandler(rs.LoadConfig(), rs.NewMemoryGuard(), log)

	j.router = ri.NewRouter(routerCfg, ri.Handlers{
		FormOpen: oaf.NewHandler(reserve, j.client, log),
		FormSubmission: car.NewHandler(submitCfg, vad.NewHandler(vad.LoadConfig(), log),
			j.store, reserve, avatars, dispatcher, j.client, nil, log),
		Review: rd.NewHandler(reviewCfg, j.store, j.client, dispatcher, log),
		Commands: map[models.CommandName]ri.CommandHandler{
			models.CommandInfo:   ai.NewHandler(j.store, avatars, j.client, log),
			models.CommandUnlink: ua.NewHandler(&ua.Config{ModeratorPermission: moderatorBit}, j.store, j.client, log),
		},
	}, log)
	return j
}

var moderatorBit, _ = discord.PermissionByName("ModerateMembers")

var (
	applicant = models.Actor{UserID: "42", Username: "applicant"}
	reviewer  = models.Actor{UserID: "mod-1", Username: "mod", Permissions: moderatorBit}
)

func applyClick(id string) discord.RawInteraction {
	return discord.RawInteraction{
		Kind: discord.KindComponent, Ref: models.InteractionRef{ID: id}, Actor: applicant, CustomID: "apply_button",
	}
}

func submitStandard(id string, values map[string]string) discord.RawInteraction {
	return discord.RawInteraction{
		Kind: discord.KindModalSubmit, Ref: models.InteractionRef{ID: id}, Actor: applicant, CustomID: "application_modal",
		Values: values,
	}
}

func standardValues() map[string]string {
	return map[string]string{"question1": "LNS 001", "question2": "builderman", "question3": "yes", "question4": "evenings"}
}

// ==========================
// Journeys
// ==========================

func TestApplicationJourney(t *testing.T) {
	profiles := profileService(t)
	j := newJourney(t, ri.LoadConfig(), car.LoadConfig(), profiles.URL)
	router, store, client := j.router, j.store, j.client
	ctx := context.Background()

	// open the form
	router.HandleInteraction(ctx, applyClick("open-1"))
	calls := client.take()
	require.Equal(t, []string{"modal"}, kinds(calls))
	assert.Equal(t, "application_modal", calls[0].text)
	assert.Equal(t, models.MaxShortAnswerLength, calls[0].modal.Fields[0].MaxLength)

	// a second open is refused
	router.HandleInteraction(ctx, discord.RawInteraction{
		Kind: discord.KindComponent, Ref: models.InteractionRef{ID: "open-2"}, Actor: applicant, CustomID: "fasttrack_button",
	})
	calls = client.take()
	require.Equal(t, []string{"respond"}, kinds(calls))
	assert.Equal(t, "You have already applied!", calls[0].text)

	// submit
	router.HandleInteraction(ctx, submitStandard("submit-1", standardValues()))
	calls = client.take()
	require.Equal(t, []string{"respond", "channel", "dm"}, kinds(calls))
	assert.Equal(t, "Application submitted!", calls[0].text)
	assert.Equal(t, "review", calls[1].target)
	assert.Equal(t, "https://tr.rbxcdn.com/156.png", calls[1].msg.Embeds[0].ThumbnailURL)
	assert.Equal(t, "approve_42", calls[1].msg.Buttons[0].CustomID)

	rec, err := store.Fetch(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "LNS 001", rec.PlateIdentifier)
	assert.Equal(t, models.StatusPendingReview, rec.Status)

	// approve
	router.HandleInteraction(ctx, discord.RawInteraction{
		Kind: discord.KindComponent, Ref: models.InteractionRef{ID: "review-1", MessageID: "ticket-1"}, Actor: reviewer, CustomID: "approve_42",
	})
	calls = client.take()
	require.Equal(t, []string{"update", "role", "dm"}, kinds(calls))
	assert.Equal(t, "Application approved for <@42>", calls[0].text)
	assert.Equal(t, "Application Approved", calls[2].msg.Embeds[0].Title)

	// a late decline on a stale ticket only closes it
	router.HandleInteraction(ctx, discord.RawInteraction{
		Kind: discord.KindComponent, Ref: models.InteractionRef{ID: "review-2", MessageID: "ticket-old"}, Actor: reviewer, CustomID: "decline_42",
	})
	calls = client.take()
	require.Equal(t, []string{"update", "followup"}, kinds(calls))
	assert.Equal(t, "ticket-old", calls[0].target)
	assert.Equal(t, "This application has already been reviewed.", calls[1].text)
	assert.True(t, calls[1].msg.Ephemeral)

	rec, err = store.Fetch(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, rec.Status)

	// info
	router.HandleInteraction(ctx, discord.RawInteraction{
		Kind: discord.KindCommand, Ref: models.InteractionRef{ID: "info-1"}, Actor: applicant, CommandName: "info",
	})
	calls = client.take()
	require.Equal(t, []string{"respond"}, kinds(calls))
	assert.Equal(t, "applicant's Info", calls[0].msg.Embeds[0].Title)

	// unlink, then info finds nothing
	router.HandleInteraction(ctx, discord.RawInteraction{
		Kind: discord.KindCommand, Ref: models.InteractionRef{ID: "unlink-1"}, Actor: reviewer, CommandName: "unlink",
		Options: map[string]string{"user": "42"},
	})
	calls = client.take()
	require.Equal(t, []string{"respond"}, kinds(calls))
	assert.Equal(t, "Application data for <@42> has been removed.", calls[0].text)

	router.HandleInteraction(ctx, discord.RawInteraction{
		Kind: discord.KindCommand, Ref: models.InteractionRef{ID: "info-2"}, Actor: applicant, CommandName: "info",
	})
	calls = client.take()
	require.Equal(t, []string{"respond"}, kinds(calls))
	assert.Equal(t, "No application data found. Please submit an application first.", calls[0].text)
}

func TestSlowProfileLookupStillPostsTicket(t *testing.T) {
	profiles := slowProfileService(t)

	routerCfg := ri.LoadConfig()
	routerCfg.InteractionTimeout = 100 * time.Millisecond
	submitCfg := car.LoadConfig()
	submitCfg.EnrichmentTimeout = 300 * time.Millisecond

	j := newJourney(t, routerCfg, submitCfg, profiles.URL)
	ctx := context.Background()

	j.router.HandleInteraction(ctx, applyClick("open-1"))
	require.Equal(t, []string{"modal"}, kinds(j.client.take()))

	j.router.HandleInteraction(ctx, submitStandard("submit-1", standardValues()))

	calls := j.client.take()
	require.Equal(t, []string{"respond", "channel", "dm"}, kinds(calls))
	assert.Equal(t, "Application submitted!", calls[0].text)
	assert.Equal(t, "review", calls[1].target)
	assert.Empty(t, calls[1].msg.Embeds[0].ThumbnailURL)

	rec, err := j.store.Fetch(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, rec.Status)
}

func TestRejectedSubmissionCanReopenForm(t *testing.T) {
	profiles := profileService(t)
	j := newJourney(t, ri.LoadConfig(), car.LoadConfig(), profiles.URL)
	ctx := context.Background()

	j.router.HandleInteraction(ctx, applyClick("open-1"))
	require.Equal(t, []string{"modal"}, kinds(j.client.take()))

	values := standardValues()
	values["question1"] = "   "
	j.router.HandleInteraction(ctx, submitStandard("submit-1", values))

	calls := j.client.take()
	require.Equal(t, []string{"respond"}, kinds(calls))
	assert.Equal(t, "Your submission is incomplete. Please fill in every field and try again.", calls[0].text)

	_, err := j.store.Fetch(ctx, "42")
	assert.ErrorIs(t, err, as.ErrNotFound)

	j.router.HandleInteraction(ctx, applyClick("open-2"))
	calls = j.client.take()
	require.Equal(t, []string{"modal"}, kinds(calls))

	j.router.HandleInteraction(ctx, submitStandard("submit-2", standardValues()))
	assert.Equal(t, []string{"respond", "channel", "dm"}, kinds(j.client.take()))
}
