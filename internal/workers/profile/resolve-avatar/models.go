// internal/workers/profile/resolve-avatar/models.go
package resolveavatar

type Input struct {
	Handle string `json:"handle"`
}

type Output struct {
	AvatarURL string `json:"avatarUrl,omitempty"`
	Resolved  bool   `json:"resolved"`
}

type usernamesRequest struct {
	Usernames          []string `json:"usernames"`
	ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
}

type usernamesResponse struct {
	Data []struct {
		RequestedUsername string `json:"requestedUsername"`
		ID                int64  `json:"id"`
		Name              string `json:"name"`
	} `json:"data"`
}

type thumbnailsResponse struct {
	Data []struct {
		TargetID int64  `json:"targetId"`
		State    string `json:"state"`
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}
