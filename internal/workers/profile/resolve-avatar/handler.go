// internal/workers/profile/resolve-avatar/handler.go
package resolveavatar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	httpclient "application-intake/internal/common/http"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/metrics"
)

const (
	TaskType = "resolve-avatar"
)

var (
	ErrProfileNotFound   = errors.New("PROFILE_NOT_FOUND")
	ErrThumbnailNotFound = errors.New("THUMBNAIL_NOT_FOUND")
)

// Lookup outcomes recorded on intake_enrichment_lookups_total.
const (
	outcomeResolved    = "resolved"
	outcomeSkipped     = "skipped"
	outcomeNoProfile   = "no_profile"
	outcomeNoThumbnail = "no_thumbnail"
	outcomeError       = "error"
)

// Handler resolves a profile handle to an avatar image URL. Every failure
// degrades to a miss.
type Handler struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: httpclient.NewRateLimitedClient(config.Timeout, config.RateLimitRPS, config.RateLimitBurst),
		logger: log.WithFields(map[string]interface{}{"worker": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	avatarURL, ok := h.ResolveAvatar(ctx, input.Handle)
	return &Output{AvatarURL: avatarURL, Resolved: ok}, nil
}

// ResolveAvatar returns ("", false) on any miss or failure. Not retried, not cached.
func (h *Handler) ResolveAvatar(ctx context.Context, handle string) (string, bool) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		metrics.EnrichmentLookups.WithLabelValues(outcomeSkipped).Inc()
		return "", false
	}

	userID, err := h.resolveUserID(ctx, handle)
	if err != nil {
		h.recordMiss(handle, "resolve_id", err)
		return "", false
	}

	imageURL, err := h.fetchThumbnail(ctx, userID)
	if err != nil {
		h.recordMiss(handle, "thumbnail", err)
		return "", false
	}

	metrics.EnrichmentLookups.WithLabelValues(outcomeResolved).Inc()
	h.logger.Debug("avatar resolved", map[string]interface{}{
		"handle":    handle,
		"profileId": userID,
	})
	return imageURL, true
}

func (h *Handler) recordMiss(handle, stage string, err error) {
	outcome := outcomeError
	switch {
	case errors.Is(err, ErrProfileNotFound):
		outcome = outcomeNoProfile
	case errors.Is(err, ErrThumbnailNotFound):
		outcome = outcomeNoThumbnail
	}
	metrics.EnrichmentLookups.WithLabelValues(outcome).Inc()

	h.logger.Warn("avatar lookup failed, continuing without avatar", map[string]interface{}{
		"handle":  handle,
		"stage":   stage,
		"outcome": outcome,
		"error":   err,
	})
}

func (h *Handler) resolveUserID(ctx context.Context, handle string) (int64, error) {
	body, err := json.Marshal(usernamesRequest{Usernames: []string{handle}})
	if err != nil {
		return 0, err
	}

	endpoint := strings.TrimRight(h.config.UsersBaseURL, "/") + "/v1/usernames/users"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var parsed usernamesResponse
	if err := h.doJSON(ctx, req, &parsed); err != nil {
		return 0, err
	}
	if len(parsed.Data) == 0 || parsed.Data[0].ID == 0 {
		return 0, ErrProfileNotFound
	}
	return parsed.Data[0].ID, nil
}

func (h *Handler) fetchThumbnail(ctx context.Context, userID int64) (string, error) {
	base, err := url.Parse(strings.TrimRight(h.config.ThumbnailsBaseURL, "/") + "/v1/users/avatar")
	if err != nil {
		return "", err
	}
	params := url.Values{}
	params.Set("userIds", strconv.FormatInt(userID, 10))
	params.Set("size", h.config.AvatarSize)
	params.Set("format", "Png")
	params.Set("isCircular", "true")
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	var parsed thumbnailsResponse
	if err := h.doJSON(ctx, req, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Data) == 0 || parsed.Data[0].ImageURL == "" {
		return "", ErrThumbnailNotFound
	}
	return parsed.Data[0].ImageURL, nil
}

func (h *Handler) doJSON(ctx context.Context, req *http.Request, out interface{}) error {
	resp, err := h.client.DoWithContext(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("profile API returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
