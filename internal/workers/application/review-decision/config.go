// internal/workers/application/review-decision/config.go
package reviewdecision

import "time"

type Config struct {
	GuildID           string
	ApprovedRoleID    string
	ApprovedMessage   string
	DeclineReason     string
	SideEffectTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ApprovedMessage:   "Congratulations! Your application has been approved.",
		DeclineReason:     "Your application did not meet our requirements.",
		SideEffectTimeout: 10 * time.Second,
	}
}
