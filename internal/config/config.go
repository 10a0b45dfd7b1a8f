// Package config loads application configuration from the environment.
//
// WHY A CONFIG STRUCT?
// Handlers and services never read os.Getenv themselves. All ambient state is
// captured once at startup into an explicit Config value and passed into
// constructors. That keeps every layer testable without mutating the process
// environment — tests just build a Config literal.
//
// The struct tags come from github.com/caarlos0/env: each field names its
// environment variable and an optional default.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Config holds every knob the server needs.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	DBPath      string `env:"DB_PATH" envDefault:"data/birthdays.db"`

	// Google OAuth app credentials. Created at
	// https://console.cloud.google.com → APIs & Services → Credentials.
	// The redirect URL must match the OAuth client config exactly.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	// SessionSecret signs the session cookie (HMAC-SHA256).
	// Generate with: openssl rand -hex 32
	SessionSecret string `env:"SESSION_SECRET"`
}

// Load reads and validates configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return Config{}, fmt.Errorf("config: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}
	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = fmt.Sprintf("http://localhost:%d/auth/callback", cfg.Port)
	}
	if len(cfg.SessionSecret) < 16 {
		return Config{}, fmt.Errorf("config: SESSION_SECRET must be at least 16 characters")
	}

	return cfg, nil
}

// Production reports whether the server runs in production mode.
// It controls the Secure attribute on cookies (HTTPS only).
func (c Config) Production() bool {
	return c.Environment == "production"
}
