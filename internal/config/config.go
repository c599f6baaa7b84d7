// Package config loads, defaults and validates the soulbot configuration.
// Values come from an optional YAML file, an optional .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SOULBOT_LOGGER_LEVEL.
const EnvPrefix = "SOULBOT"

// Database drivers.
const (
	DriverREST   = "rest"
	DriverSQLite = "sqlite"
)

// Completion providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Config is the root configuration passed explicitly to every component.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Completion CompletionConfig `mapstructure:"completion"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Soul       SoulConfig       `mapstructure:"soul"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds transport settings. Webhook mode is used when
// WebhookURL is set, long polling otherwise.
type TelegramConfig struct {
	Token         string `mapstructure:"token"          validate:"required"`
	WebhookURL    string `mapstructure:"webhook_url"    validate:"omitempty,url"`
	WebhookPort   int    `mapstructure:"webhook_port"   validate:"min=1,max=65535"`
	WebhookSecret string `mapstructure:"webhook_secret"`

	TypingCharsPerSecond int           `mapstructure:"typing_chars_per_second" validate:"gt=0"`
	TypingMinDelay       time.Duration `mapstructure:"typing_min_delay"        validate:"min=0"`
	TypingMaxDelay       time.Duration `mapstructure:"typing_max_delay"        validate:"gtefield=TypingMinDelay"`

	// RateLimitPerMinute of zero disables the per-user limiter.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" validate:"min=0"`
	RateLimitBurst     int `mapstructure:"rate_limit_burst"      validate:"min=1"`

	// BotInfo is filled at startup from getMe.
	BotInfo models.User `mapstructure:"-" validate:"-"`
}

// CompletionConfig configures the chat-completion provider and its fallback path.
type CompletionConfig struct {
	Provider      string        `mapstructure:"provider"       validate:"oneof=openrouter gemini"`
	APIKey        string        `mapstructure:"api_key"        validate:"required"`
	BaseURL       string        `mapstructure:"base_url"       validate:"omitempty,url"`
	PrimaryModel  string        `mapstructure:"primary_model"  validate:"required"`
	FallbackModel string        `mapstructure:"fallback_model"`
	Temperature   float64       `mapstructure:"temperature"    validate:"min=0,max=2"`
	TopP          float64       `mapstructure:"top_p"          validate:"min=0,max=1"`
	MaxTokens     int           `mapstructure:"max_tokens"     validate:"min=1"`
	Timeout       time.Duration `mapstructure:"timeout"        validate:"min=1s"`
	MaxAttempts   int           `mapstructure:"max_attempts"   validate:"min=1,max=10"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"    validate:"min=0"`
	Referer       string        `mapstructure:"referer"`
	Title         string        `mapstructure:"title"`
	Fillers       []string      `mapstructure:"fillers"        validate:"min=1,dive,required"`
}

// DatabaseConfig selects and configures the memory store backend.
type DatabaseConfig struct {
	Driver  string        `mapstructure:"driver"  validate:"oneof=rest sqlite"`
	URL     string        `mapstructure:"url"     validate:"required_if=Driver rest,omitempty,url"`
	APIKey  string        `mapstructure:"api_key" validate:"required_if=Driver rest"`
	Path    string        `mapstructure:"path"    validate:"required_if=Driver sqlite"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s"`
}

// CacheConfig enables the Redis read-through cache when RedisURL is set.
type CacheConfig struct {
	RedisURL        string        `mapstructure:"redis_url"        validate:"omitempty,url"`
	StateTTL        time.Duration `mapstructure:"state_ttl"        validate:"min=1s"`
	InteractionsCap int           `mapstructure:"interactions_cap" validate:"min=1,max=100"`
}

// SoulConfig configures the persona.
type SoulConfig struct {
	Persona      string `mapstructure:"persona"       validate:"required"`
	HistoryLimit int    `mapstructure:"history_limit" validate:"min=1,max=100"`
}

// SchedulerConfig lists periodic tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig is one scheduled task. Schedule is a six-field cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds the user-facing texts. Welcome may contain {name}.
type MessagesConfig struct {
	Welcome     string `mapstructure:"welcome"      validate:"required"`
	Help        string `mapstructure:"help"         validate:"required"`
	About       string `mapstructure:"about"        validate:"required"`
	Tips        string `mapstructure:"tips"         validate:"required"`
	RateLimited string `mapstructure:"rate_limited" validate:"required"`
	AboutButton string `mapstructure:"about_button" validate:"required"`
	TipsButton  string `mapstructure:"tips_button"  validate:"required"`
}

// envAliases binds the conventional deployment variable names alongside the
// prefixed ones. The prefixed name wins when both are set.
var envAliases = map[string]string{
	"telegram.token":        "TELEGRAM_BOT_TOKEN",
	"telegram.webhook_url":  "WEBHOOK_URL",
	"telegram.webhook_port": "PORT",
	"completion.api_key":    "OPENROUTER_API_KEY",
	"database.url":          "SUPABASE_URL",
	"database.api_key":      "SUPABASE_ANON_KEY",
	"cache.redis_url":       "REDIS_URL",
}

// Load reads configuration from path (missing file is fine), from a .env file
// in the working directory (also optional) and from the environment, then
// validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Webhook reports whether the bot should receive updates by webhook.
func (c *Config) Webhook() bool {
	return c.Telegram.WebhookURL != ""
}
