// internal/workers/application/send-notification/config.go
package sendnotification

import "time"

type Config struct {
	ReviewChannelID string
	OutcomesEnabled bool
	Timeout         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
