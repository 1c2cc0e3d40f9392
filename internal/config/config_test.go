package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("SESSION_TTL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default openai model, got %s", cfg.OpenAIModel)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.MaxToolRounds != 6 {
		t.Fatalf("expected default max tool rounds, got %d", cfg.MaxToolRounds)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no default CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/hospital_db")
	t.Setenv("TURN_TIMEOUT", "30s")
	t.Setenv("MAX_TOOL_ROUNDS", "4")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/hospital_db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.TurnTimeout != 30*time.Second {
		t.Fatalf("expected turn timeout override, got %s", cfg.TurnTimeout)
	}
	if cfg.MaxToolRounds != 4 {
		t.Fatalf("expected max tool rounds override, got %d", cfg.MaxToolRounds)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls override")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected CORS origins override, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_TOOL_ROUNDS", "lots")
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("REDIS_TLS", "yep")
	cfg := Load()
	if cfg.MaxToolRounds != 6 {
		t.Fatalf("expected default on malformed int, got %d", cfg.MaxToolRounds)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default on malformed duration, got %s", cfg.SessionTTL)
	}
	if cfg.RedisTLS {
		t.Fatalf("expected default on malformed bool")
	}
}
