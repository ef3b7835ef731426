package config

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := FromEnv(); !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("expected ErrMissingEnv, got %v", err)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SerialPrefix != "BUG" {
		t.Fatalf("expected BUG prefix, got %q", cfg.SerialPrefix)
	}
	if cfg.RateLimitRequests != 100 || cfg.RateLimitWindow != 15*time.Minute {
		t.Fatalf("unexpected rate limit %d/%s", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if cfg.MutationMaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", cfg.MutationMaxAttempts)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ACCESS_TTL", "not-a-duration")
	t.Setenv("MUTATION_MAX_ATTEMPTS", "0")
	t.Setenv("LOG_SQL", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.DatabaseDriver)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Fatalf("origins = %v, want %v", cfg.CORSOrigins, want)
	}
	if cfg.AccessTTL != time.Hour {
		t.Fatalf("invalid duration should fall back to default, got %s", cfg.AccessTTL)
	}
	if cfg.MutationMaxAttempts != 1 {
		t.Fatalf("attempts should be clamped to 1, got %d", cfg.MutationMaxAttempts)
	}
	if !cfg.LogSQL {
		t.Fatalf("expected LogSQL")
	}
}
