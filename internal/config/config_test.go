package config

import (
	"strings"
	"testing"
	"time"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.RedisAddr != "" || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addresses %q %q", cfg.RedisAddr, cfg.HTTPAddr)
	}
	if cfg.Session.Logout.MaxAttempts != 3 || !cfg.Session.Logout.NuclearFallback {
		t.Fatalf("unexpected logout defaults %+v", cfg.Session.Logout)
	}
	if cfg.Session.Marker.Enabled {
		t.Fatal("expected markers disabled without a key")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"REDIS_ADDR":              "redis:6379",
		"CORS_ORIGINS":            "https://portal.example, https://admin.example",
		"LOGOUT_MAX_ATTEMPTS":     "5",
		"LOGOUT_RETRY_DELAY":      "250ms",
		"LOGOUT_NUCLEAR_FALLBACK": "false",
		"MARKER_SIGNING_KEY":      strings.Repeat("k", 32),
		"METRICS_ENABLED":         "true",
	}))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.RedisAddr != "redis:6379" || len(cfg.AllowOrigins) != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	l := cfg.Session.Logout
	if l.MaxAttempts != 5 || l.RetryDelay != 250*time.Millisecond || l.NuclearFallback {
		t.Fatalf("unexpected logout config %+v", l)
	}
	if !cfg.Session.Marker.Enabled || !cfg.Session.Metrics.Enabled {
		t.Fatal("expected markers and metrics enabled")
	}
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	for _, env := range []map[string]string{
		{"LOGOUT_MAX_ATTEMPTS": "three"},
		{"LOGOUT_RETRY_DELAY": "soon"},
		{"AUDIT_ENABLED": "maybe"},
		{"LOGOUT_MAX_ATTEMPTS": "0"},
		{"MARKER_SIGNING_KEY": "short"},
	} {
		if _, err := FromEnv(envMap(env)); err == nil {
			t.Fatalf("expected error for %v", env)
		}
	}
}
