package sessionkit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/parentsmadrasa/sessionkit/internal/storagetest"
	"github.com/parentsmadrasa/sessionkit/storage"
	"github.com/redis/go-redis/v9"
)

const testClientID = "client-1"

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Logout.RetryDelay = 0
	cfg.Logout.NavigationDelay = 0
	cfg.Metrics.Enabled = true
	return cfg
}

func testRecord() Record {
	return Record{
		UserID:      "u1",
		DisplayName: "Amina",
		Phone:       "+91 90000 00000",
		Role:        "parent",
	}
}

type faultyEngine struct {
	engine *Engine
	mem    *storage.MemoryBackend
	faults *storagetest.Backend
}

func newFaultyEngine(t *testing.T, cfg Config) faultyEngine {
	t.Helper()

	mem := storage.NewMemoryBackend()
	faulty := storagetest.Wrap(mem, storagetest.Faults{})
	engine, err := New().WithConfig(cfg).WithBackend(faulty).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return faultyEngine{engine: engine, mem: mem, faults: faulty}
}

func (f faultyEngine) holder(t *testing.T) *Holder {
	t.Helper()

	h, err := f.engine.Holder(testClientID)
	if err != nil {
		t.Fatalf("Holder failed: %v", err)
	}
	return h
}

func (f faultyEngine) read(t *testing.T, scope, key string) (string, bool) {
	t.Helper()

	value, ok, err := f.mem.Scope(scope, testClientID).Read(context.Background(), key)
	if err != nil {
		t.Fatalf("read %s/%s failed: %v", scope, key, err)
	}
	return value, ok
}

func (f faultyEngine) write(t *testing.T, scope, clientID, key, value string) {
	t.Helper()

	if err := f.mem.Scope(scope, clientID).Write(context.Background(), key, value); err != nil {
		t.Fatalf("write %s/%s failed: %v", scope, key, err)
	}
}

func signedIn(t *testing.T, f faultyEngine) *Holder {
	t.Helper()

	h := f.holder(t)
	if err := h.SignIn(context.Background(), testRecord()); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	f.write(t, storage.ScopeLocal, testClientID, storage.KeyRefreshToken, "refresh")
	f.write(t, storage.ScopeSession, testClientID, storage.KeySessionToken, "session")
	return h
}
