// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// then applies environment overrides (discord.token -> DISCORD_TOKEN).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	registerKeys(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// registerKeys makes every key known to viper so AutomaticEnv can populate
// values that appear in no config file.
func registerKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.name", "app.version", "app.environment",
		"discord.token", "discord.guild_id", "discord.review_channel_id", "discord.approved_role_id",
		"discord.admin_command_prefix", "discord.moderator_permission",
		"discord.interaction_timeout", "discord.side_effect_timeout",
		"database.postgres.host", "database.postgres.port", "database.postgres.database",
		"database.postgres.user", "database.postgres.password", "database.postgres.max_connections",
		"database.postgres.max_idle", "database.postgres.sslmode", "database.postgres.url",
		"database.redis.address", "database.redis.password", "database.redis.db",
		"guard.backend", "guard.key_prefix",
		"profile.users_base_url", "profile.thumbnails_base_url", "profile.avatar_size",
		"profile.timeout", "profile.enrichment_timeout", "profile.rate_limit_rps", "profile.rate_limit_burst",
		"notifications.submitted_message", "notifications.approved_message", "notifications.decline_reason",
		"notifications.outcomes.enabled", "notifications.outcomes.topic_arn", "notifications.outcomes.region",
		"recruitment.title", "recruitment.description", "recruitment.thumbnail_url",
		"logging.level", "logging.format",
		"server.address",
	} {
		v.SetDefault(key, nil)
	}
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// unset variables expand to "" so defaults and fallbacks still apply
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig honours the bare variable names used by hosted
// deployments (TOKEN, DATABASE_URL) when the namespaced ones are unset.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Discord.Token == "" {
		if val := os.Getenv("TOKEN"); val != "" {
			cfg.Discord.Token = val
		}
	}
	if cfg.Database.Postgres.URL == "" {
		if val := os.Getenv("DATABASE_URL"); val != "" {
			cfg.Database.Postgres.URL = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "intake-bot"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Discord.AdminCommandPrefix == "" {
		cfg.Discord.AdminCommandPrefix = "!sendmessage"
	}
	if cfg.Discord.ModeratorPermission == "" {
		cfg.Discord.ModeratorPermission = "ModerateMembers"
	}
	if cfg.Discord.InteractionTimeout == 0 {
		cfg.Discord.InteractionTimeout = 3000
	}
	if cfg.Discord.SideEffectTimeout == 0 {
		cfg.Discord.SideEffectTimeout = 10000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Guard.Backend == "" {
		cfg.Guard.Backend = GuardBackendPostgres
	}
	if cfg.Guard.KeyPrefix == "" {
		cfg.Guard.KeyPrefix = "intake:claim:"
	}

	if cfg.Profile.UsersBaseURL == "" {
		cfg.Profile.UsersBaseURL = "https://users.roblox.com"
	}
	if cfg.Profile.ThumbnailsBaseURL == "" {
		cfg.Profile.ThumbnailsBaseURL = "https://thumbnails.roblox.com"
	}
	if cfg.Profile.AvatarSize == "" {
		cfg.Profile.AvatarSize = "150x150"
	}
	if cfg.Profile.Timeout == 0 {
		cfg.Profile.Timeout = 2000
	}
	if cfg.Profile.EnrichmentTimeout == 0 {
		cfg.Profile.EnrichmentTimeout = 4000
	}
	if cfg.Profile.RateLimitRPS == 0 {
		cfg.Profile.RateLimitRPS = 5
	}
	if cfg.Profile.RateLimitBurst == 0 {
		cfg.Profile.RateLimitBurst = 10
	}

	if cfg.Notifications.SubmittedMessage == "" {
		cfg.Notifications.SubmittedMessage = "Your application has been submitted to the staff. You will be notified via DM once reviewed."
	}
	if cfg.Notifications.ApprovedMessage == "" {
		cfg.Notifications.ApprovedMessage = "Congratulations! Your application has been approved."
	}
	if cfg.Notifications.DeclineReason == "" {
		cfg.Notifications.DeclineReason = "Your application did not meet our requirements."
	}

	if cfg.Recruitment.Title == "" {
		cfg.Recruitment.Title = "Recruitment"
	}
	if cfg.Recruitment.Description == "" {
		cfg.Recruitment.Description = "Complete the application below if you want to apply!"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if cfg.Discord.GuildID == "" {
		return fmt.Errorf("discord.guild_id is required")
	}
	if cfg.Discord.ReviewChannelID == "" {
		return fmt.Errorf("discord.review_channel_id is required")
	}

	if cfg.Database.Postgres.URL == "" {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}

	switch cfg.Guard.Backend {
	case GuardBackendPostgres, GuardBackendMemory:
	case GuardBackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when guard.backend is redis")
		}
	default:
		return fmt.Errorf("guard.backend %q is not one of postgres, redis, memory", cfg.Guard.Backend)
	}

	if cfg.Notifications.Outcomes.Enabled && cfg.Notifications.Outcomes.TopicARN == "" {
		return fmt.Errorf("notifications.outcomes.topic_arn is required when outcomes are enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
