// internal/workers/data-access/application-store/config.go
package applicationstore

import "time"

type Config struct {
	// Timeout bounds each statement. Zero leaves the caller's deadline in charge.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 2 * time.Second,
	}
}
