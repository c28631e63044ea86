// internal/workers/commands/post-recruitment/config.go
package postrecruitment

type Config struct {
	Title        string
	Description  string
	ThumbnailURL string
}

func LoadConfig() *Config {
	return &Config{
		Title:       "Recruitment",
		Description: "Complete the application below if you want to apply!",
	}
}
