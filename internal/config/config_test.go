package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.ProfileMaxPoints != 200 {
		t.Fatalf("expected default profile max, got %d", cfg.ProfileMaxPoints)
	}
	if cfg.AnalysisCacheTTL != 24*time.Hour {
		t.Fatalf("expected default cache ttl, got %v", cfg.AnalysisCacheTTL)
	}
	if cfg.StravaBaseURL == "" {
		t.Fatalf("expected default strava url")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("ANALYSIS_CACHE_TTL", "90m")
	t.Setenv("PROFILE_MAX_POINTS", "150")
	t.Setenv("SMTP_HOST", "smtp.example")
	t.Setenv("STRAVA_CLIENT_ID", "12345")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("expected migrate on start")
	}
	if cfg.AnalysisCacheTTL != 90*time.Minute {
		t.Fatalf("expected override ttl, got %v", cfg.AnalysisCacheTTL)
	}
	if cfg.ProfileMaxPoints != 150 {
		t.Fatalf("expected override profile max")
	}
	if cfg.SMTPHost != "smtp.example" || cfg.StravaClientID != "12345" {
		t.Fatalf("expected smtp and strava overrides")
	}
}

func TestLoadRejectsUndecodableValues(t *testing.T) {
	cases := map[string]string{
		"PROFILE_MAX_POINTS": "lots",
		"ANALYSIS_CACHE_TTL": "soon",
		"MIGRATE_ON_START":   "perhaps",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected decode error for %s=%s", key, value)
			}
		})
	}
}
