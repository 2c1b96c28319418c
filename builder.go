package sessionkit

import (
	"errors"

	"github.com/parentsmadrasa/sessionkit/jwt"
	"github.com/parentsmadrasa/sessionkit/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Builder assembles an [Engine].
//
// Builder instances are intended to be configured during initialization and
// then discarded; Build may be called once.
type Builder struct {
	config  Config
	redis   redis.UniversalClient
	backend storage.Backend
	log     *zerolog.Logger

	auditSink AuditSink

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis stores sessions in Redis under Session.RedisPrefix.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithBackend uses backend directly. It takes precedence over WithRedis.
func (b *Builder) WithBackend(backend storage.Backend) *Builder {
	b.backend = backend
	return b
}

// WithLogger sets the engine logger. The default discards everything.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = &log
	return b
}

// WithAuditSink sets the sink used when Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend := b.backend
	if backend == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or storage backend required")
		}
		backend = storage.NewRedisBackend(b.redis, cfg.Session.RedisPrefix, cfg.Session.SessionScopeTTL)
	}

	log := zerolog.Nop()
	if b.log != nil {
		log = *b.log
	}

	engine := &Engine{
		config:  cloneConfig(cfg),
		backend: backend,
		keys:    cfg.Session.KeySet(),
		log:     log.With().Str("component", "sessionkit").Logger(),
		holders: make(map[string]*Holder),
	}
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	if cfg.Marker.Enabled {
		jm, err := jwt.NewManager(jwt.Config{
			SigningKey: cloneBytes(cfg.Marker.SigningKey),
			TTL:        cfg.Marker.TTL,
			Issuer:     cfg.Marker.Issuer,
		})
		if err != nil {
			engine.audit.Close()
			return nil, err
		}
		engine.markers = jm
	}

	b.built = true

	return engine, nil
}
