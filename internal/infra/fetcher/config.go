package fetcher

import (
	"fmt"
	"time"

	"condo-radar/internal/pkg/config"
)

// FetchConfig holds the configuration for outbound HTTP fetching.
//
// Security settings:
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - Timeout: Prevents resource starvation from slow servers
//
// Politeness settings:
//   - PerHostRate: Requests per second allowed against a single host
//   - PerHostBurst: Burst allowance on top of PerHostRate
//   - UserAgents: Pool of User-Agent strings rotated across requests
type FetchConfig struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 15s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Enforced during reading, not via the Content-Length header.
	// Default: 20971520 (20MB, PDFs are large)
	MaxBodySize int64

	// PerHostRate is the sustained request rate against one host.
	// Default: 1.0 (one request per second)
	PerHostRate float64

	// PerHostBurst is the burst size for the per-host limiter.
	// Default: 2
	PerHostBurst int

	// RetryAfterCap bounds how long a 429 Retry-After header can make the
	// client wait before it gives up on honoring it.
	// Default: 2m
	RetryAfterCap time.Duration

	// UserAgents is the rotation pool. Requests cycle through it so a
	// single string never dominates the access log of a polled host.
	UserAgents []string
}

// DefaultFetchConfig returns production-ready defaults for the fetch client.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout:       15 * time.Second,
		MaxBodySize:   20 * 1024 * 1024,
		PerHostRate:   1.0,
		PerHostBurst:  2,
		RetryAfterCap: 2 * time.Minute,
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
			"Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
		},
	}
}

// Validate checks if the configuration values are valid and safe.
func (c *FetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.PerHostRate <= 0 {
		return fmt.Errorf("per-host rate must be positive, got %v", c.PerHostRate)
	}

	if c.PerHostBurst < 1 {
		return fmt.Errorf("per-host burst must be at least 1, got %d", c.PerHostBurst)
	}

	if len(c.UserAgents) == 0 {
		return fmt.Errorf("user agent pool must not be empty")
	}

	return nil
}

// LoadFetchConfigFromEnv loads configuration from environment variables,
// falling back to defaults for anything unset or unparsable.
//
// Environment variables:
//   - FETCH_TIMEOUT: duration string, e.g., "15s"
//   - FETCH_MAX_BODY_SIZE: integer in bytes
//   - FETCH_PER_HOST_RATE_MS: integer, milliseconds between requests
//   - FETCH_PER_HOST_BURST: integer
//   - FETCH_RETRY_AFTER_CAP: duration string
//   - FETCH_USER_AGENTS: comma-separated User-Agent pool
func LoadFetchConfigFromEnv() (FetchConfig, error) {
	cfg := DefaultFetchConfig()

	cfg.Timeout = config.GetEnvDuration("FETCH_TIMEOUT", cfg.Timeout)
	cfg.MaxBodySize = int64(config.GetEnvInt("FETCH_MAX_BODY_SIZE", int(cfg.MaxBodySize)))
	if intervalMS := config.GetEnvInt("FETCH_PER_HOST_RATE_MS", 0); intervalMS > 0 {
		cfg.PerHostRate = 1000.0 / float64(intervalMS)
	}
	cfg.PerHostBurst = config.GetEnvInt("FETCH_PER_HOST_BURST", cfg.PerHostBurst)
	cfg.RetryAfterCap = config.GetEnvDuration("FETCH_RETRY_AFTER_CAP", cfg.RetryAfterCap)
	cfg.UserAgents = config.GetEnvStringList("FETCH_USER_AGENTS", cfg.UserAgents)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
