// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Discord       DiscordConfig      `mapstructure:"discord"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Guard         GuardConfig        `mapstructure:"guard"`
	Profile       ProfileConfig      `mapstructure:"profile"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Recruitment   RecruitmentConfig  `mapstructure:"recruitment"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Server        ServerConfig       `mapstructure:"server"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// DiscordConfig holds the platform connection and the guild-specific ids
// the workflow acts on.
type DiscordConfig struct {
	Token               string `mapstructure:"token"`
	GuildID             string `mapstructure:"guild_id"`
	ReviewChannelID     string `mapstructure:"review_channel_id"`
	ApprovedRoleID      string `mapstructure:"approved_role_id"`
	AdminCommandPrefix  string `mapstructure:"admin_command_prefix"`
	ModeratorPermission string `mapstructure:"moderator_permission"`
	InteractionTimeout  int    `mapstructure:"interaction_timeout"` // milliseconds
	SideEffectTimeout   int    `mapstructure:"side_effect_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	URL            string `mapstructure:"url"` // DATABASE_URL style, takes precedence
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Guard backends.
const (
	GuardBackendPostgres = "postgres"
	GuardBackendRedis    = "redis"
	GuardBackendMemory   = "memory"
)

// GuardConfig selects where submission claims live.
type GuardConfig struct {
	Backend   string `mapstructure:"backend"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ProfileConfig configures the external profile-lookup service.
type ProfileConfig struct {
	UsersBaseURL      string  `mapstructure:"users_base_url"`
	ThumbnailsBaseURL string  `mapstructure:"thumbnails_base_url"`
	AvatarSize        string  `mapstructure:"avatar_size"`
	Timeout           int     `mapstructure:"timeout"`            // milliseconds, per request
	EnrichmentTimeout int     `mapstructure:"enrichment_timeout"` // milliseconds, whole lookup
	RateLimitRPS      float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst    int     `mapstructure:"rate_limit_burst"`
}

// NotificationConfig holds applicant-facing texts and the outcome audit sink.
type NotificationConfig struct {
	SubmittedMessage string `mapstructure:"submitted_message"`
	ApprovedMessage  string `mapstructure:"approved_message"`
	DeclineReason    string `mapstructure:"decline_reason"`
	Outcomes         struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
		Region   string `mapstructure:"region"`
	} `mapstructure:"outcomes"`
}

type RecruitmentConfig struct {
	Title        string `mapstructure:"title"`
	Description  string `mapstructure:"description"`
	ThumbnailURL string `mapstructure:"thumbnail_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}
