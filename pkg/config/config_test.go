package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5*time.Minute, cfg.Cache.ItemTTL)
	assert.Equal(t, time.Minute, cfg.Cache.RateLimitTTL)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, time.Second, cfg.Browser.ProbeTimeout)
	assert.Equal(t, 50, cfg.Browser.MaxScrolls)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Instagram.UserAgent)
	assert.Empty(t, cfg.Proxy.Endpoints)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REELSCRAPER_USER_AGENT", "test-agent")
	t.Setenv("REELSCRAPER_PROXIES", "http://p1:8080, http://p2:8080 ,")
	t.Setenv("REELSCRAPER_ITEM_TTL", "90s")
	t.Setenv("REELSCRAPER_RATE_LIMIT_TTL", "2m")
	t.Setenv("REELSCRAPER_RETRY_ATTEMPTS", "5")
	t.Setenv("REELSCRAPER_REQUESTS_PER_MINUTE", "30")
	t.Setenv("REELSCRAPER_HEADLESS", "false")
	t.Setenv("REELSCRAPER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "test-agent", cfg.Instagram.UserAgent)
	assert.Equal(t, []string{"http://p1:8080", "http://p2:8080"}, cfg.Proxy.Endpoints)
	assert.Equal(t, 90*time.Second, cfg.Cache.ItemTTL)
	assert.Equal(t, 2*time.Minute, cfg.Cache.RateLimitTTL)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
instagram:
  user_agent: file-agent
proxy:
  endpoints:
    - http://proxy-a:8080
    - http://proxy-b:8080
retry:
  max_attempts: 4
browser:
  headless: false
  max_scrolls: 25
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-agent", cfg.Instagram.UserAgent)
	assert.Len(t, cfg.Proxy.Endpoints, 2)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 25, cfg.Browser.MaxScrolls)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, time.Minute, cfg.Cache.RateLimitTTL)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty user agent", func(c *Config) { c.Instagram.UserAgent = "" }},
		{"zero item TTL", func(c *Config) { c.Cache.ItemTTL = 0 }},
		{"zero rate limit TTL", func(c *Config) { c.Cache.RateLimitTTL = 0 }},
		{"zero retry attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"negative base delay", func(c *Config) { c.Retry.BaseDelay = -time.Second }},
		{"zero rpm", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }},
		{"zero navigation timeout", func(c *Config) { c.Browser.NavigationTimeout = 0 }},
		{"zero probe timeout", func(c *Config) { c.Browser.ProbeTimeout = 0 }},
		{"zero max scrolls", func(c *Config) { c.Browser.MaxScrolls = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
