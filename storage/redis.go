package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const clearScanCount = 500

// GlobMetaChars are the characters Redis SCAN MATCH treats as pattern syntax.
const GlobMetaChars = `*?[]\`

// RedisBackend stores scopes under <prefix>:<scope>:<clientID>:<key>.
type RedisBackend struct {
	redis      redis.UniversalClient
	prefix     string
	sessionTTL time.Duration
}

// NewRedisBackend builds a backend on an existing client. sessionTTL applies
// to every write in [ScopeSession]; zero disables expiry.
func NewRedisBackend(client redis.UniversalClient, prefix string, sessionTTL time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = "ps"
	}
	return &RedisBackend{
		redis:      client,
		prefix:     prefix,
		sessionTTL: sessionTTL,
	}
}

// Scope returns the client-bound view of the named scope.
func (b *RedisBackend) Scope(name, clientID string) Scope {
	var ttl time.Duration
	if name == ScopeSession {
		ttl = b.sessionTTL
	}
	return &redisScope{
		redis:     b.redis,
		name:      name,
		namespace: b.prefix + ":" + name + ":" + clientID + ":",
		ttl:       ttl,
	}
}

// Ping checks Redis availability.
func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.redis.Ping(ctx).Err(); err != nil {
		return storageErr("ping", "redis", "", err)
	}
	return nil
}

type redisScope struct {
	redis     redis.UniversalClient
	name      string
	namespace string
	ttl       time.Duration
}

func (s *redisScope) Name() string { return s.name }

func (s *redisScope) key(k string) string { return s.namespace + k }

func (s *redisScope) Read(ctx context.Context, key string) (string, bool, error) {
	value, err := s.redis.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, storageErr("read", s.name, key, err)
	}
	return value, true, nil
}

func (s *redisScope) Write(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return storageErr("write", s.name, key, err)
	}
	return nil
}

func (s *redisScope) Remove(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return storageErr("remove", s.name, key, err)
	}
	return nil
}

// Clear deletes every key in the client namespace. It walks the keyspace with
// SCAN, so keys written concurrently with a clear may survive it.
func (s *redisScope) Clear(ctx context.Context) error {
	var cursor uint64
	pattern := escapeGlob(s.namespace) + "*"
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, clearScanCount).Result()
		if err != nil {
			return storageErr("clear", s.name, "", err)
		}
		if len(keys) > 0 {
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				return storageErr("clear", s.name, "", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func escapeGlob(s string) string {
	if !strings.ContainsAny(s, GlobMetaChars) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if strings.ContainsRune(GlobMetaChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
