// Package config loads the proxy configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration.
type Config struct {
	// Port is the HTTP listen port
	Port string `env:"PORT" envDefault:"8080"`

	// BaseURL is the upstream Quran content API root
	BaseURL string `env:"QURAN_API_BASE_URL" envDefault:"https://api.quran.com/api/v4"`

	// CacheTTLMillis is the cache entry lifetime in milliseconds
	CacheTTLMillis int64 `env:"QURAN_API_CACHE_TTL_MS" envDefault:"60000"`

	// MaxCacheEntries is the soft bound on cached entries
	MaxCacheEntries int `env:"QURAN_API_CACHE_MAX_ENTRIES" envDefault:"200"`

	// Timeout bounds each upstream call
	Timeout time.Duration `env:"QURAN_API_TIMEOUT" envDefault:"10s"`

	// MaxAttempts is the number of tries for transport failures (1 = no retry)
	MaxAttempts int `env:"QURAN_API_MAX_ATTEMPTS" envDefault:"1"`

	// UserAgent is sent to the upstream
	UserAgent string `env:"USER_AGENT" envDefault:"quran-api-proxy/0.1.0"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogPretty enables console log output
	LogPretty bool `env:"LOG_PRETTY" envDefault:"false"`

	// OTELEndpoint is the OTLP/HTTP collector URL; empty disables tracing
	OTELEndpoint string `env:"QURAN_PROXY_OTEL_ENDPOINT"`

	// OTELEnabled switches tracing off without clearing the endpoint
	OTELEnabled bool `env:"QURAN_PROXY_OTEL_ENABLED" envDefault:"true"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CacheTTL returns the entry lifetime as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMillis) * time.Millisecond
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("QURAN_API_BASE_URL: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("QURAN_API_BASE_URL must be an absolute http(s) url (got %q)", c.BaseURL)
	}
	if c.CacheTTLMillis <= 0 {
		return fmt.Errorf("QURAN_API_CACHE_TTL_MS must be > 0 (got %d)", c.CacheTTLMillis)
	}
	if c.MaxCacheEntries <= 0 {
		return fmt.Errorf("QURAN_API_CACHE_MAX_ENTRIES must be > 0 (got %d)", c.MaxCacheEntries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("QURAN_API_TIMEOUT must be > 0 (got %v)", c.Timeout)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("QURAN_API_MAX_ATTEMPTS must be >= 1 (got %d)", c.MaxAttempts)
	}
	return nil
}
