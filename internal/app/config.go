package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the dashboard binaries.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	DataPath string `envconfig:"DATA_PATH" default:"data.csv"`

	// Empty RedisAddr disables the series cache and background jobs.
	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	// Empty GotenbergURL disables PDF export.
	GotenbergURL string        `envconfig:"GOTENBERG_URL"`
	PDFTimeout   time.Duration `envconfig:"PDF_TIMEOUT" default:"25s"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.DataPath = strings.TrimSpace(cfg.DataPath)
	cfg.RedisAddr = strings.TrimSpace(cfg.RedisAddr)
	cfg.GotenbergURL = strings.TrimSpace(cfg.GotenbergURL)
	if cfg.DataPath == "" {
		return nil, errors.New("data path must be provided")
	}
	switch cfg.LogFormat {
	case "pretty", "json":
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, errors.New("rate limit must be positive")
	}
	if cfg.CacheTTL < 0 {
		return nil, errors.New("cache ttl must not be negative")
	}
	if cfg.PDFEnabled() {
		if cfg.PDFTimeout <= 0 {
			return nil, errors.New("pdf timeout must be positive")
		}
		if cfg.PDFTimeout >= cfg.AppWriteTimeout || cfg.PDFTimeout >= cfg.AppRequestTimeout {
			return nil, fmt.Errorf("pdf timeout %s must be shorter than the write and request timeouts", cfg.PDFTimeout)
		}
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c != nil && c.RedisAddr != ""
}

// PDFEnabled reports whether a Gotenberg endpoint is configured.
func (c *Config) PDFEnabled() bool {
	return c != nil && c.GotenbergURL != ""
}
