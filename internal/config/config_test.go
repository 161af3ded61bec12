package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("expected default JWT TTL 24h, got %s", cfg.JWTTTL)
	}
	if cfg.ICDTimeout != 10*time.Second {
		t.Errorf("expected default ICD timeout 10s, got %s", cfg.ICDTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("SEARCH_RATE_LIMIT", "2.5")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Errorf("expected JWT TTL 2h, got %s", cfg.JWTTTL)
	}
	if !cfg.RedisTLS {
		t.Error("expected RedisTLS true")
	}
	if cfg.SearchRateLimit != 2.5 {
		t.Errorf("expected rate limit 2.5, got %f", cfg.SearchRateLimit)
	}
}

func TestICDConfigured(t *testing.T) {
	cfg := Load()
	if cfg.ICDConfigured() {
		t.Error("expected ICD unconfigured by default")
	}

	t.Setenv("ICD_API_CLIENT_ID", "id")
	t.Setenv("ICD_API_CLIENT_SECRET", "secret")
	t.Setenv("ICD_API_TOKEN_URL", "https://icd.example/token")
	t.Setenv("ICD_API_SEARCH_URL", "https://icd.example/search")

	cfg = Load()
	if !cfg.ICDConfigured() {
		t.Error("expected ICD configured when all four variables are set")
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("JWT_TTL", "not-a-duration")

	cfg := Load()
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("expected fallback to 24h, got %s", cfg.JWTTTL)
	}
}
