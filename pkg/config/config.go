package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the reel scraper
type Config struct {
	// Instagram request settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Egress proxy pool
	Proxy ProxyConfig `yaml:"proxy" json:"proxy"`

	// Cache TTLs
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Retry policy for the direct item path
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Browser automation settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific request configuration
type InstagramConfig struct {
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// ProxyConfig holds the initial egress proxy pool
type ProxyConfig struct {
	Endpoints []string `yaml:"endpoints" json:"endpoints"`
}

// CacheConfig holds TTLs for the in-memory resilience cache
type CacheConfig struct {
	ItemTTL      time.Duration `yaml:"item_ttl" json:"item_ttl"`
	RateLimitTTL time.Duration `yaml:"rate_limit_ttl" json:"rate_limit_ttl"`
}

// RetryConfig holds the bounded retry policy for direct item fetches
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
}

// RateLimitConfig holds outbound request throttling configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// BrowserConfig holds headless-browser settings for the feed crawler
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	ProbeTimeout      time.Duration `yaml:"probe_timeout" json:"probe_timeout"`
	MaxScrolls        int           `yaml:"max_scrolls" json:"max_scrolls"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0",
			RequestTimeout: 30 * time.Second,
		},
		Proxy: ProxyConfig{
			Endpoints: nil,
		},
		Cache: CacheConfig{
			ItemTTL:      5 * time.Minute,
			RateLimitTTL: time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: 30 * time.Second,
			ProbeTimeout:      time.Second,
			MaxScrolls:        50,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if userAgent := os.Getenv("REELSCRAPER_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}

	if proxies := os.Getenv("REELSCRAPER_PROXIES"); proxies != "" {
		var endpoints []string
		for _, p := range strings.Split(proxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				endpoints = append(endpoints, p)
			}
		}
		c.Proxy.Endpoints = endpoints
	}

	if ttl := os.Getenv("REELSCRAPER_ITEM_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			c.Cache.ItemTTL = d
		}
	}
	if ttl := os.Getenv("REELSCRAPER_RATE_LIMIT_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			c.Cache.RateLimitTTL = d
		}
	}

	if attempts := os.Getenv("REELSCRAPER_RETRY_ATTEMPTS"); attempts != "" {
		var val int
		fmt.Sscanf(attempts, "%d", &val)
		if val > 0 {
			c.Retry.MaxAttempts = val
		}
	}

	if rpm := os.Getenv("REELSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if headless := os.Getenv("REELSCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) != "false"
	}

	if logLevel := os.Getenv("REELSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".reelscraper.yaml",
		".reelscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "reelscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "reelscraper", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Instagram.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Cache.ItemTTL <= 0 {
		errs = append(errs, errors.New("item TTL must be positive"))
	}
	if c.Cache.RateLimitTTL <= 0 {
		errs = append(errs, errors.New("rate limit TTL must be positive"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry attempts must be positive"))
	}
	if c.Retry.BaseDelay <= 0 {
		errs = append(errs, errors.New("retry base delay must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Browser.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("probe timeout must be positive"))
	}
	if c.Browser.MaxScrolls <= 0 {
		errs = append(errs, errors.New("max scrolls must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".reelscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
