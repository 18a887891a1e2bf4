package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Identity provider modes.
const (
	IdentityLocal  = "local"
	IdentityRemote = "remote"
)

// Prefix is the environment variable prefix, e.g. TRACKNFRESH_HTTP_PORT.
const Prefix = "TRACKNFRESH"

// Development session keys. They match the envconfig defaults below and are
// refused in production.
const (
	devSessionHashKey  = "dev-only-hash-key-change-me-0123456789abcdef"
	devSessionBlockKey = "dev-only-block-key-32-bytes-long"
)

// Config holds the configuration for the web frontend.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Remote food service
	FoodServiceURL            string `envconfig:"FOOD_SERVICE_URL" default:"https://track-n-fresh-server.vercel.app"`
	FoodServiceTimeoutSeconds int    `envconfig:"FOOD_SERVICE_TIMEOUT_SECONDS" default:"0"`

	// Identity provider: local (sqlite accounts) or remote (REST identity toolkit)
	IdentityMode      string `envconfig:"IDENTITY_MODE" default:"local"`
	IdentityURL       string `envconfig:"IDENTITY_URL" default:"https://identitytoolkit.googleapis.com"`
	IdentityAPIKey    string `envconfig:"IDENTITY_API_KEY" default:""`
	LocalAccountsPath string `envconfig:"LOCAL_ACCOUNTS_PATH" default:""`

	// Federated login (OAuth2 authorization code)
	OAuthClientID     string `envconfig:"OAUTH_CLIENT_ID" default:""`
	OAuthClientSecret string `envconfig:"OAUTH_CLIENT_SECRET" default:""`
	OAuthRedirectURL  string `envconfig:"OAUTH_REDIRECT_URL" default:"http://localhost:8080/login/google/callback"`

	// Session cookie
	SessionHashKey       string `envconfig:"SESSION_HASH_KEY" default:"dev-only-hash-key-change-me-0123456789abcdef"`
	SessionBlockKey      string `envconfig:"SESSION_BLOCK_KEY" default:"dev-only-block-key-32-bytes-long"`
	SessionMaxAgeSeconds int    `envconfig:"SESSION_MAX_AGE_SECONDS" default:"604800"`
	SecureCookies        bool   `ignored:"true"`

	// Health
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates mode selections and derives cookie security from the environment.
func (c *Config) ResolveDefaults() error {
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}

	switch c.IdentityMode {
	case "", IdentityLocal:
		c.IdentityMode = IdentityLocal
	case IdentityRemote:
		if c.IdentityURL == "" || c.IdentityAPIKey == "" {
			return fmt.Errorf("IDENTITY_MODE=remote requires IDENTITY_URL and IDENTITY_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported IDENTITY_MODE: %s", c.IdentityMode)
	}

	if c.FoodServiceURL == "" {
		return fmt.Errorf("FOOD_SERVICE_URL is required")
	}
	if c.FoodServiceTimeoutSeconds < 0 {
		return fmt.Errorf("FOOD_SERVICE_TIMEOUT_SECONDS must be >= 0")
	}

	// securecookie accepts AES-128/192/256 block keys only
	switch len(c.SessionBlockKey) {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("SESSION_BLOCK_KEY must be 16, 24 or 32 bytes, got %d", len(c.SessionBlockKey))
	}
	if len(c.SessionHashKey) < 32 {
		return fmt.Errorf("SESSION_HASH_KEY must be at least 32 bytes")
	}
	if c.IsProduction() {
		if c.SessionHashKey == devSessionHashKey {
			return fmt.Errorf("SESSION_HASH_KEY must be set in production")
		}
		if c.SessionBlockKey == devSessionBlockKey {
			return fmt.Errorf("SESSION_BLOCK_KEY must be set in production")
		}
	}

	if c.HealthIntervalSeconds <= 0 {
		return fmt.Errorf("HEALTH_INTERVAL_SECONDS must be > 0")
	}
	if c.HealthProbeTimeoutSeconds < 0 {
		return fmt.Errorf("HEALTH_PROBE_TIMEOUT_SECONDS must be >= 0")
	}

	c.SecureCookies = c.IsProduction()
	return nil
}

// New loads an optional .env file, then parses TRACKNFRESH_ prefixed environment variables.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("food_service_url", cfg.FoodServiceURL).
		Str("identity_mode", cfg.IdentityMode).
		Str("oauth_configured", func() string {
			if cfg.OAuthClientID != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		FoodServiceURL:            "http://localhost:9999",
		IdentityMode:              IdentityLocal,
		LocalAccountsPath:         ":memory:",
		OAuthRedirectURL:          "http://localhost:8080/login/google/callback",
		SessionHashKey:            "test-hash-key-0123456789abcdef0123456789",
		SessionBlockKey:           "test-block-key16",
		SessionMaxAgeSeconds:      3600,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
	return cfg
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// FederatedEnabled reports whether OAuth client credentials are configured.
func (c *Config) FederatedEnabled() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != ""
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// FoodServiceTimeout is zero when no client timeout is configured.
func (c *Config) FoodServiceTimeout() time.Duration {
	return time.Duration(c.FoodServiceTimeoutSeconds) * time.Second
}

// HealthInterval returns the period between dependency probes.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

// HealthProbeTimeout bounds a single dependency probe.
func (c *Config) HealthProbeTimeout() time.Duration {
	return time.Duration(c.HealthProbeTimeoutSeconds) * time.Second
}
