// internal/workers/profile/resolve-avatar/config.go
package resolveavatar

import "time"

type Config struct {
	UsersBaseURL      string
	ThumbnailsBaseURL string
	AvatarSize        string
	Timeout           time.Duration
	RateLimitRPS      float64
	RateLimitBurst    int
}

func LoadConfig() *Config {
	return &Config{
		UsersBaseURL:      "https://users.roblox.com",
		ThumbnailsBaseURL: "https://thumbnails.roblox.com",
		AvatarSize:        "150x150",
		Timeout:           2 * time.Second,
		RateLimitRPS:      5,
		RateLimitBurst:    10,
	}
}
