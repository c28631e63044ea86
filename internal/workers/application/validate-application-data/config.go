// internal/workers/application/validate-application-data/config.go
package validateapplicationdata

import "application-intake/internal/models"

// Config bounds free-text answers. Zero disables the bound. The defaults
// match the limits the modal enforces.
type Config struct {
	MaxShortLength     int
	MaxParagraphLength int
}

func LoadConfig() *Config {
	return &Config{
		MaxShortLength:     models.MaxShortAnswerLength,
		MaxParagraphLength: models.MaxParagraphAnswerLength,
	}
}
