package cli

import (
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/parentsmadrasa/sessionkit"
	"github.com/parentsmadrasa/sessionkit/internal/config"
	"github.com/parentsmadrasa/sessionkit/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type runtime struct {
	cfg    *config.Config
	log    zerolog.Logger
	engine *sessionkit.Engine
	close  func()
}

// openRuntime loads configuration and builds an engine on Redis, starting an
// embedded server when REDIS_ADDR is empty.
func openRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	var embedded *miniredis.Miniredis
	addr := cfg.RedisAddr
	if addr == "" {
		embedded, err = miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded redis: %w", err)
		}
		addr = embedded.Addr()
		log.Warn().Str("addr", addr).Msg("REDIS_ADDR not set; using embedded redis, sessions will not persist")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	engine, err := sessionkit.New().
		WithConfig(cfg.Session).
		WithRedis(client).
		WithLogger(log).
		WithAuditSink(sessionkit.NewLogSink(log)).
		Build()
	if err != nil {
		_ = client.Close()
		if embedded != nil {
			embedded.Close()
		}
		return nil, err
	}

	return &runtime{
		cfg:    cfg,
		log:    log,
		engine: engine,
		close: func() {
			engine.Close()
			_ = client.Close()
			if embedded != nil {
				embedded.Close()
			}
		},
	}, nil
}
