package sessionkit

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/parentsmadrasa/sessionkit/storage"
	"github.com/redis/go-redis/v9"
)

func benchmarkEngine(b *testing.B, cfg Config, backend storage.Backend) *Engine {
	b.Helper()

	engine, err := New().WithConfig(cfg).WithBackend(backend).Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	b.Cleanup(engine.Close)
	return engine
}

func BenchmarkSignInLogoutMemory(b *testing.B) {
	engine := benchmarkEngine(b, testConfig(), storage.NewMemoryBackend())
	h, _ := engine.Holder(testClientID)
	ctx := context.Background()
	rec := testRecord()
	b.ReportAllocs()

	for b.Loop() {
		if err := h.SignIn(ctx, rec); err != nil {
			b.Fatalf("SignIn failed: %v", err)
		}
		if _, err := h.Logout(ctx); err != nil {
			b.Fatalf("Logout failed: %v", err)
		}
	}
}

func BenchmarkSignInLogoutRedis(b *testing.B) {
	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := testConfig()
	engine := benchmarkEngine(b, cfg, storage.NewRedisBackend(rdb, cfg.Session.RedisPrefix, cfg.Session.SessionScopeTTL))
	h, _ := engine.Holder(testClientID)
	ctx := context.Background()
	rec := testRecord()
	b.ReportAllocs()

	for b.Loop() {
		if err := h.SignIn(ctx, rec); err != nil {
			b.Fatalf("SignIn failed: %v", err)
		}
		if _, err := h.Logout(ctx); err != nil {
			b.Fatalf("Logout failed: %v", err)
		}
	}
}

// Many goroutines log out the same client; singleflight collapses them.
func BenchmarkLogoutSameClientParallel(b *testing.B) {
	engine := benchmarkEngine(b, testConfig(), storage.NewMemoryBackend())
	h, _ := engine.Holder(testClientID)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := h.Logout(ctx); err != nil {
				b.Errorf("Logout failed: %v", err)
				return
			}
		}
	})
}

func BenchmarkLogoutManyClientsParallel(b *testing.B) {
	engine := benchmarkEngine(b, testConfig(), storage.NewMemoryBackend())
	ctx := context.Background()
	var next atomic.Int64
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		h, err := engine.Holder("bench-" + strconv.FormatInt(next.Add(1), 10))
		if err != nil {
			b.Errorf("Holder failed: %v", err)
			return
		}
		rec := testRecord()
		for pb.Next() {
			if err := h.SignIn(ctx, rec); err != nil {
				b.Errorf("SignIn failed: %v", err)
				return
			}
			if _, err := h.Logout(ctx); err != nil {
				b.Errorf("Logout failed: %v", err)
				return
			}
		}
	})
}
