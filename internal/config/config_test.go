package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("PROPERTY_ADDRESS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.PropertyAddress != "123 Main St, Anytown, ST 12345" {
		t.Fatalf("expected default property address, got %s", cfg.PropertyAddress)
	}
	if cfg.UnavailabilityRate != 0.15 {
		t.Fatalf("expected default unavailability rate, got %f", cfg.UnavailabilityRate)
	}
	if cfg.EmailRetryDelay != 2*time.Second {
		t.Fatalf("expected default email retry delay, got %s", cfg.EmailRetryDelay)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_PATH", "/data/concierge.db")
	t.Setenv("PROPERTY_NAME", "Riverbend Flats")
	t.Setenv("UNAVAILABILITY_RATE", "0")
	t.Setenv("EMAIL_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("EMAIL_RETRY_BASE_DELAY", "500ms")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabasePath != "/data/concierge.db" {
		t.Fatalf("expected db path override, got %s", cfg.DatabasePath)
	}
	if cfg.PropertyName != "Riverbend Flats" {
		t.Fatalf("expected property name override, got %s", cfg.PropertyName)
	}
	if cfg.UnavailabilityRate != 0 {
		t.Fatalf("expected unavailability rate override, got %f", cfg.UnavailabilityRate)
	}
	if cfg.EmailRetryMax != 5 {
		t.Fatalf("expected retry max override, got %d", cfg.EmailRetryMax)
	}
	if cfg.EmailRetryDelay != 500*time.Millisecond {
		t.Fatalf("expected retry delay override, got %s", cfg.EmailRetryDelay)
	}
	if cfg.OpenAITemperature != 0.2 {
		t.Fatalf("expected temperature override, got %f", cfg.OpenAITemperature)
	}
}
