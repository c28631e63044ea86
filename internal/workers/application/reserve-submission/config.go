// internal/workers/application/reserve-submission/config.go
package reservesubmission

type Config struct {
	Backend   string
	KeyPrefix string
}

func LoadConfig() *Config {
	return &Config{
		Backend:   "postgres",
		KeyPrefix: "intake:claim:",
	}
}
