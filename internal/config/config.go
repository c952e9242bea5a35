// Package config loads sift's runtime configuration.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables
//  2. A .env file in the working directory (loaded at startup)
//  3. Default values
//
// Secrets (API keys, bot token, database URL) only ever come from the
// environment; there is no config file with credentials on disk.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation.
var (
	// ErrMissingModelKey indicates the model provider API key is not set.
	ErrMissingModelKey = errors.New("missing GROQ_API_KEY")

	// ErrMissingSearchKey indicates the search provider API key is not set.
	ErrMissingSearchKey = errors.New("missing TAVILY_API_KEY")

	// ErrInvalidMaxResults indicates the search result cap is out of range.
	ErrInvalidMaxResults = errors.New("invalid search max results")
)

// Defaults applied when the environment does not override them.
const (
	DefaultAddr             = ":8000"
	DefaultModelName        = "qwen/qwen3-32b"
	DefaultModelBaseURL     = "https://api.groq.com/openai/v1"
	DefaultSearchMaxResults = 4
)

// Config stores the full application configuration.
type Config struct {
	// HTTP server
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Model provider (OpenAI-compatible endpoint)
	ModelName    string `mapstructure:"model"`
	ModelBaseURL string `mapstructure:"model_base_url"`
	GroqAPIKey   string `mapstructure:"groq_api_key"`

	// Web search provider
	TavilyAPIKey     string `mapstructure:"tavily_api_key"`
	SearchMaxResults int    `mapstructure:"search_max_results"`

	// Durable chat storage. Empty disables the /chats API (degraded mode).
	DatabaseURL string `mapstructure:"database_url"`

	// Bot transport. Empty disables the bot (HTTP-only mode).
	TelegramToken string `mapstructure:"telegram_bot_token"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load reads configuration from the environment (and .env, if present).
func Load() (*Config, error) {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("model", DefaultModelName)
	v.SetDefault("model_base_url", DefaultModelBaseURL)
	v.SetDefault("search_max_results", DefaultSearchMaxResults)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds the credential keys that live outside the SIFT_
// prefix. These names match what the upstream providers document.
func bindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("groq_api_key", "GROQ_API_KEY")
	_ = v.BindEnv("tavily_api_key", "TAVILY_API_KEY")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
}

// ValidateServe checks the requirements for running the server.
// Model and search credentials are hard requirements; the database URL
// and bot token are optional and degrade gracefully (logged by the
// caller, not decided here).
func (c *Config) ValidateServe() error {
	if c == nil {
		return errors.New("configuration is nil")
	}
	if strings.TrimSpace(c.GroqAPIKey) == "" {
		return ErrMissingModelKey
	}
	if strings.TrimSpace(c.TavilyAPIKey) == "" {
		return ErrMissingSearchKey
	}
	if c.SearchMaxResults < 1 || c.SearchMaxResults > 20 {
		return fmt.Errorf("%w: %d (want 1..20)", ErrInvalidMaxResults, c.SearchMaxResults)
	}
	return nil
}

// PersistenceEnabled reports whether durable chat storage is configured.
func (c *Config) PersistenceEnabled() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// BotEnabled reports whether the Telegram transport is configured.
func (c *Config) BotEnabled() bool {
	return strings.TrimSpace(c.TelegramToken) != ""
}
