// Package config defines process configuration and its loading order.
//
// Precedence (low -> high):
//  1. defaults (New)
//  2. YAML file if FINRISK_CONFIG points at one
//  3. environment variables with the FINRISK_ prefix
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains all process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: json or text.
	LogFormat string `koanf:"log_format"`

	// UpstreamBaseURL is the RiskShield API base URL.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UpstreamAPIKey authenticates against RiskShield. When empty the service
	// runs in demo mode and scores locally without network calls.
	UpstreamAPIKey string `koanf:"upstream_api_key"`

	// UpstreamConnectTimeout bounds connection establishment per attempt.
	UpstreamConnectTimeout time.Duration `koanf:"upstream_connect_timeout"`

	// UpstreamReadTimeout bounds the full request/response per attempt.
	UpstreamReadTimeout time.Duration `koanf:"upstream_read_timeout"`

	// RetryMaxAttempts is the total attempt budget per admitted call.
	RetryMaxAttempts int `koanf:"retry_max_attempts"`

	// RetryBaseDelay seeds the exponential backoff (base * 2^(attempt-1)).
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// BreakerFailureThreshold trips the circuit after this many consecutive
	// failures.
	BreakerFailureThreshold int `koanf:"breaker_failure_threshold"`

	// BreakerCooldown is how long the circuit stays open before probing.
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`

	// IDChecksumEnabled toggles Luhn validation of the ID check digit. The
	// product docs disagree on whether the rule is live, so it stays
	// switchable per deployment.
	IDChecksumEnabled bool `koanf:"id_checksum_enabled"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:                    ":8080",
		LogLevel:                "info",
		LogFormat:               "json",
		UpstreamBaseURL:         "https://api.riskshield.example.com",
		UpstreamConnectTimeout:  5 * time.Second,
		UpstreamReadTimeout:     10 * time.Second,
		RetryMaxAttempts:        3,
		RetryBaseDelay:          time.Second,
		BreakerFailureThreshold: 5,
		BreakerCooldown:         60 * time.Second,
		IDChecksumEnabled:       true,
	}
}

// Load builds a Config by layering defaults, an optional file, and env vars.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("FINRISK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// FINRISK_UPSTREAM_BASE_URL -> upstream_base_url, matching the koanf tags.
	envProvider := env.Provider("FINRISK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FINRISK_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if !govalidator.IsURL(c.UpstreamBaseURL) {
		return fmt.Errorf("upstream_base_url is not a valid URL: %q", c.UpstreamBaseURL)
	}
	if c.RetryMaxAttempts < 1 {
		return errors.New("retry_max_attempts must be at least 1")
	}
	if c.BreakerFailureThreshold < 1 {
		return errors.New("breaker_failure_threshold must be at least 1")
	}
	if c.UpstreamConnectTimeout <= 0 || c.UpstreamReadTimeout <= 0 {
		return errors.New("upstream timeouts must be positive")
	}
	return nil
}

// DemoMode reports whether the service scores locally instead of calling the
// upstream. Local development runs without RiskShield credentials.
func (c *Config) DemoMode() bool {
	return c.UpstreamAPIKey == ""
}
