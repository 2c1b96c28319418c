package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisBackendTest(t *testing.T) (*RedisBackend, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisBackend(rdb, "ps", time.Hour), mr, rdb
}

func TestRedisScopeWriteReadRemove(t *testing.T) {
	backend, mr, _ := newRedisBackendTest(t)
	ctx := context.Background()
	scope := backend.Scope(ScopeLocal, "c-1")

	if err := scope.Write(ctx, DefaultPrimaryKey, `{"userId":"u1"}`); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !mr.Exists("ps:local:c-1:manualAuthUser") {
		t.Fatalf("expected namespaced key to exist, keys=%v", mr.Keys())
	}

	value, ok, err := scope.Read(ctx, DefaultPrimaryKey)
	if err != nil || !ok || value != `{"userId":"u1"}` {
		t.Fatalf("unexpected read: value=%q ok=%v err=%v", value, ok, err)
	}

	if err := scope.Remove(ctx, DefaultPrimaryKey); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := scope.Remove(ctx, DefaultPrimaryKey); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
	if _, ok, _ := scope.Read(ctx, DefaultPrimaryKey); ok {
		t.Fatalf("expected key to be absent after remove")
	}
}

func TestRedisSessionScopeAppliesTTL(t *testing.T) {
	backend, mr, _ := newRedisBackendTest(t)
	ctx := context.Background()

	if err := backend.Scope(ScopeSession, "c-1").Write(ctx, KeySessionToken, "tok"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := backend.Scope(ScopeLocal, "c-1").Write(ctx, KeyAuthToken, "tok"); err != nil {
		t.Fatalf("write: %v", err)
	}

	if ttl := mr.TTL("ps:session:c-1:sessionToken"); ttl != time.Hour {
		t.Fatalf("expected session ttl 1h, got %v", ttl)
	}
	if ttl := mr.TTL("ps:local:c-1:authToken"); ttl != 0 {
		t.Fatalf("expected no ttl on local scope, got %v", ttl)
	}
}

func TestRedisClearStaysInsideClientNamespace(t *testing.T) {
	backend, mr, _ := newRedisBackendTest(t)
	ctx := context.Background()

	mine := backend.Scope(ScopeLocal, "c-1")
	other := backend.Scope(ScopeLocal, "c-2")
	mineSession := backend.Scope(ScopeSession, "c-1")

	for _, key := range []string{DefaultPrimaryKey, KeyAuthToken, "preferredLanguage"} {
		if err := mine.Write(ctx, key, "v"); err != nil {
			t.Fatalf("write %s: %v", key, err)
		}
	}
	if err := other.Write(ctx, DefaultPrimaryKey, "v"); err != nil {
		t.Fatalf("write other: %v", err)
	}
	if err := mineSession.Write(ctx, KeySessionToken, "v"); err != nil {
		t.Fatalf("write session: %v", err)
	}

	if err := mine.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	for _, key := range []string{DefaultPrimaryKey, KeyAuthToken, "preferredLanguage"} {
		if mr.Exists("ps:local:c-1:" + key) {
			t.Fatalf("expected %s to be cleared", key)
		}
	}
	if !mr.Exists("ps:local:c-2:manualAuthUser") {
		t.Fatalf("clear must not touch another client's namespace")
	}
	if !mr.Exists("ps:session:c-1:sessionToken") {
		t.Fatalf("clear must not touch another scope")
	}
}

func TestRedisClearEscapesPrefixPattern(t *testing.T) {
	_, mr, rdb := newRedisBackendTest(t)
	ctx := context.Background()

	if err := mr.Set("ps:local:c1:theme", "dark"); err != nil {
		t.Fatalf("seed foreign key: %v", err)
	}
	for _, prefix := range []string{"p?", "p*", "[p]s", `p\s`} {
		scope := NewRedisBackend(rdb, prefix, time.Hour).Scope(ScopeLocal, "c1")
		if err := scope.Write(ctx, "theme", "light"); err != nil {
			t.Fatalf("write with prefix %q: %v", prefix, err)
		}
		if err := scope.Clear(ctx); err != nil {
			t.Fatalf("clear with prefix %q: %v", prefix, err)
		}
		if !mr.Exists("ps:local:c1:theme") {
			t.Fatalf("clear with prefix %q removed another namespace", prefix)
		}
		if mr.Exists(prefix + ":local:c1:theme") {
			t.Fatalf("clear with prefix %q left its own key behind", prefix)
		}
	}
}

func TestRedisFailuresAreStorageErrors(t *testing.T) {
	backend, mr, _ := newRedisBackendTest(t)
	ctx := context.Background()
	scope := backend.Scope(ScopeLocal, "c-1")

	mr.SetError("READONLY simulated failure")
	defer mr.SetError("")

	err := scope.Remove(ctx, DefaultPrimaryKey)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "remove" || se.Scope != ScopeLocal || se.Key != DefaultPrimaryKey {
		t.Fatalf("unexpected storage error detail: %#v", se)
	}

	if err := scope.Clear(ctx); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected clear ErrStorage, got %v", err)
	}
	if err := backend.Ping(ctx); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ping ErrStorage, got %v", err)
	}
}
