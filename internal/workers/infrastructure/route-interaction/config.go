// internal/workers/infrastructure/route-interaction/config.go
package routeinteraction

import "time"

type Config struct {
	// InteractionTimeout bounds each dispatch. It matches the platform's
	// acknowledgement window.
	InteractionTimeout time.Duration
	AdminCommandPrefix string
}

func LoadConfig() *Config {
	return &Config{
		InteractionTimeout: 3 * time.Second,
		AdminCommandPrefix: "!sendmessage",
	}
}
