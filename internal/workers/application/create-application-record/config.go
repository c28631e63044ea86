// internal/workers/application/create-application-record/config.go
package createapplicationrecord

import "time"

type Config struct {
	SubmittedMessage string
	// SideEffectTimeout bounds enrichment, the ticket post and the DM,
	// which run after the applicant has been answered.
	SideEffectTimeout time.Duration
	// EnrichmentTimeout caps the avatar lookup within SideEffectTimeout.
	EnrichmentTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		SubmittedMessage:  "Your application has been submitted to the staff. You will be notified via DM once reviewed.",
		SideEffectTimeout: 10 * time.Second,
		EnrichmentTimeout: 4 * time.Second,
	}
}
