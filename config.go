package sessionkit

import (
	"errors"
	"strings"
	"time"

	"github.com/parentsmadrasa/sessionkit/storage"
)

// Config holds every tunable of the engine.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Session SessionConfig
	Logout  LogoutConfig
	Marker  MarkerConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls key layout and scope lifetimes.
type SessionConfig struct {
	RedisPrefix     string
	PrimaryKey      string
	AuxiliaryKeys   []string
	SessionScopeTTL time.Duration
}

// KeySet returns the managed keys described by the config.
func (c SessionConfig) KeySet() storage.KeySet {
	return storage.KeySet{
		Primary:   c.PrimaryKey,
		Auxiliary: append([]string(nil), c.AuxiliaryKeys...),
	}
}

/*
====================================
LOGOUT CONFIG
====================================
*/

// LogoutConfig bounds the logout retry loop.
//
// NuclearFallback clears each scope of the client's namespace, including
// cached data that is not auth-related, once targeted removal has exhausted
// MaxAttempts. It never reaches other clients.
type LogoutConfig struct {
	MaxAttempts     int
	RetryDelay      time.Duration
	NuclearFallback bool
	NavigationDelay time.Duration
	SignInRoute     string
}

// MarkerConfig controls the signed marker written on sign-in.
type MarkerConfig struct {
	Enabled    bool
	SigningKey []byte
	TTL        time.Duration
	Issuer     string
}

// AuditConfig controls the audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles counters and the logout latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	keys := storage.DefaultKeySet()
	return Config{
		Session: SessionConfig{
			RedisPrefix:     "ps",
			PrimaryKey:      keys.Primary,
			AuxiliaryKeys:   keys.Auxiliary,
			SessionScopeTTL: 12 * time.Hour,
		},
		Logout: LogoutConfig{
			MaxAttempts:     3,
			RetryDelay:      100 * time.Millisecond,
			NuclearFallback: true,
			NavigationDelay: 1500 * time.Millisecond,
			SignInRoute:     "/signin",
		},
		Marker: MarkerConfig{
			Enabled: false,
			TTL:     7 * 24 * time.Hour,
			Issuer:  "parents-madrasa-portal",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.AuxiliaryKeys = append([]string(nil), cfg.Session.AuxiliaryKeys...)
	out.Marker.SigningKey = cloneBytes(cfg.Marker.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Session.RedisPrefix, storage.GlobMetaChars) {
		return errors.New("Session RedisPrefix must not contain glob characters " + storage.GlobMetaChars)
	}
	if strings.TrimSpace(c.Session.PrimaryKey) == "" {
		return errors.New("Session PrimaryKey must be set")
	}
	for _, key := range c.Session.AuxiliaryKeys {
		if strings.TrimSpace(key) == "" {
			return errors.New("Session AuxiliaryKeys must not contain empty keys")
		}
	}
	if c.Session.SessionScopeTTL < 0 {
		return errors.New("Session SessionScopeTTL must be >= 0")
	}

	if c.Logout.MaxAttempts < 1 || c.Logout.MaxAttempts > 10 {
		return errors.New("Logout MaxAttempts must be between 1 and 10")
	}
	if c.Logout.RetryDelay < 0 || c.Logout.RetryDelay > 5*time.Second {
		return errors.New("Logout RetryDelay must be between 0 and 5s")
	}
	if c.Logout.NavigationDelay < 0 {
		return errors.New("Logout NavigationDelay must be >= 0")
	}
	if !strings.HasPrefix(c.Logout.SignInRoute, "/") {
		return errors.New("Logout SignInRoute must be an absolute path")
	}

	if c.Marker.Enabled {
		if len(c.Marker.SigningKey) < 32 {
			return errors.New("Marker SigningKey must be at least 32 bytes")
		}
		if c.Marker.TTL <= 0 {
			return errors.New("Marker TTL must be > 0")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}
	return nil
}
