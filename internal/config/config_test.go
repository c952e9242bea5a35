package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultModelName, cfg.ModelName)
	assert.Equal(t, DefaultModelBaseURL, cfg.ModelBaseURL)
	assert.Equal(t, DefaultSearchMaxResults, cfg.SearchMaxResults)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SIFT_ADDR", ":9090")
	t.Setenv("SIFT_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("TAVILY_API_KEY", "tvly_test")
	t.Setenv("DATABASE_URL", "postgres://localhost/sift")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.ModelName)
	assert.Equal(t, "gsk_test", cfg.GroqAPIKey)
	assert.Equal(t, "tvly_test", cfg.TavilyAPIKey)
	assert.True(t, cfg.PersistenceEnabled())
	assert.True(t, cfg.BotEnabled())
}

func TestValidateServe(t *testing.T) {
	base := func() *Config {
		return &Config{
			GroqAPIKey:       "gsk_test",
			TavilyAPIKey:     "tvly_test",
			SearchMaxResults: 4,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().ValidateServe())
	})

	t.Run("missing model key", func(t *testing.T) {
		cfg := base()
		cfg.GroqAPIKey = ""
		assert.ErrorIs(t, cfg.ValidateServe(), ErrMissingModelKey)
	})

	t.Run("missing search key", func(t *testing.T) {
		cfg := base()
		cfg.TavilyAPIKey = "  "
		assert.ErrorIs(t, cfg.ValidateServe(), ErrMissingSearchKey)
	})

	t.Run("max results out of range", func(t *testing.T) {
		cfg := base()
		cfg.SearchMaxResults = 0
		assert.ErrorIs(t, cfg.ValidateServe(), ErrInvalidMaxResults)
	})

	t.Run("nil config", func(t *testing.T) {
		var cfg *Config
		assert.Error(t, cfg.ValidateServe())
	})
}

func TestDegradedModes(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.PersistenceEnabled())
	assert.False(t, cfg.BotEnabled())
}
