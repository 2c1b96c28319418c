// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/parentsmadrasa/sessionkit"
)

// Config holds all configuration for the portal process.
type Config struct {
	// Redis address (host:port). Empty runs an embedded store.
	RedisAddr string
	HTTPAddr  string
	// CORS origins allowed to call the API.
	AllowOrigins []string

	Logging LoggingConfig
	Session sessionkit.Config
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load reads .env files when present, then the environment. Unset variables
// keep their defaults; malformed ones are errors.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		RedisAddr: getenv("REDIS_ADDR"),
		HTTPAddr:  valueOr(getenv("HTTP_ADDR"), ":8080"),
		Logging: LoggingConfig{
			Level:  valueOr(getenv("LOG_LEVEL"), "info"),
			Format: valueOr(getenv("LOG_FORMAT"), "json"),
		},
		Session: sessionkit.DefaultConfig(),
	}
	if origins := getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, o)
			}
		}
	}

	s := &cfg.Session
	if v := getenv("SESSION_PREFIX"); v != "" {
		s.Session.RedisPrefix = v
	}
	p := parser{getenv: getenv}
	p.durationVar("SESSION_SCOPE_TTL", &s.Session.SessionScopeTTL)
	p.intVar("LOGOUT_MAX_ATTEMPTS", &s.Logout.MaxAttempts)
	p.durationVar("LOGOUT_RETRY_DELAY", &s.Logout.RetryDelay)
	p.boolVar("LOGOUT_NUCLEAR_FALLBACK", &s.Logout.NuclearFallback)
	p.durationVar("LOGOUT_NAVIGATION_DELAY", &s.Logout.NavigationDelay)
	if v := getenv("SIGN_IN_ROUTE"); v != "" {
		s.Logout.SignInRoute = v
	}
	if key := getenv("MARKER_SIGNING_KEY"); key != "" {
		s.Marker.Enabled = true
		s.Marker.SigningKey = []byte(key)
	}
	p.durationVar("MARKER_TTL", &s.Marker.TTL)
	p.boolVar("AUDIT_ENABLED", &s.Audit.Enabled)
	p.boolVar("METRICS_ENABLED", &s.Metrics.Enabled)
	p.boolVar("METRICS_LATENCY", &s.Metrics.EnableLatencyHistograms)
	if p.err != nil {
		return nil, p.err
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	return cfg, nil
}

type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) intVar(name string, dst *int) {
	v := p.getenv(name)
	if v == "" || p.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", name, err)
		return
	}
	*dst = n
}

func (p *parser) boolVar(name string, dst *bool) {
	v := p.getenv(name)
	if v == "" || p.err != nil {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", name, err)
		return
	}
	*dst = b
}

func (p *parser) durationVar(name string, dst *time.Duration) {
	v := p.getenv(name)
	if v == "" || p.err != nil {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", name, err)
		return
	}
	*dst = d
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
