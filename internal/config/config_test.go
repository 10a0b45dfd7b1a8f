package config

import (
	"strings"
	"testing"
)

// setRequiredEnv puts a minimal valid environment in place; t.Setenv restores
// the originals when the test ends.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("SESSION_SECRET", "test-secret-at-least-16-chars!!")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "data/birthdays.db" {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.GoogleRedirectURL != "http://localhost:8080/auth/callback" {
		t.Errorf("GoogleRedirectURL = %q, want derived default", cfg.GoogleRedirectURL)
	}
	if cfg.Production() {
		t.Error("Production() = true in development")
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("GOOGLE_REDIRECT_URL", "https://birthdays.example.com/auth/callback")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.GoogleRedirectURL != "https://birthdays.example.com/auth/callback" {
		t.Errorf("GoogleRedirectURL = %q, explicit value must win over the default", cfg.GoogleRedirectURL)
	}
	if !cfg.Production() {
		t.Error("Production() = false with ENVIRONMENT=production")
	}
}

func TestLoad_MissingGoogleCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_CLIENT_ID", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() accepted missing Google credentials")
	}
	if !strings.Contains(err.Error(), "GOOGLE_CLIENT_ID") {
		t.Errorf("error %q does not name the missing variable", err)
	}
}

func TestLoad_ShortSessionSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() accepted a session secret under 16 characters")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "70000")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() accepted an out-of-range port")
	}
}
