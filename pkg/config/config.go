// Package config resolves gateway configuration from the process environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the gateway configuration.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	APIBaseURL      string        `envconfig:"API_URL"`
	PublicURL       string        `envconfig:"PUBLIC_URL"`
	Port            int           `envconfig:"PORT" default:"3001"`
	DebugMode       bool          `envconfig:"DEBUG_MODE"`
	EnableAnalytics bool          `envconfig:"ENABLE_ANALYTICS" default:"true"`
	SentryDSN       string        `envconfig:"SENTRY_DSN"`
	GTMID           string        `envconfig:"GTM_ID"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	HealthTimeout   time.Duration `envconfig:"HEALTH_TIMEOUT" default:"5s"`
	RateLimitRPS    float64       `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// Legacy frontend variable names accepted as fallbacks for their
// gateway equivalents.
var legacyAliases = map[string]string{
	"API_URL":          "NEXT_PUBLIC_API_BASE_URL",
	"DEBUG_MODE":       "NEXT_PUBLIC_DEBUG_MODE",
	"ENABLE_ANALYTICS": "NEXT_PUBLIC_ENABLE_ANALYTICS",
	"SENTRY_DSN":       "NEXT_PUBLIC_SENTRY_DSN",
	"GTM_ID":           "NEXT_PUBLIC_GTM_ID",
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	applyLegacyAliases()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	return cfg, nil
}

// applyLegacyAliases copies NEXT_PUBLIC_* values into the gateway
// variable names when those are unset.
func applyLegacyAliases() {
	for name, legacy := range legacyAliases {
		if os.Getenv(name) == "" {
			if val := os.Getenv(legacy); val != "" {
				os.Setenv(name, val)
			}
		}
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// IsProduction reports whether the gateway runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}
