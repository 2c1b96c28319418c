package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps scopes in process memory. Values never expire.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]string)}
}

// Scope returns the client-bound view of the named scope.
func (b *MemoryBackend) Scope(name, clientID string) Scope {
	return &memoryScope{backend: b, name: name, namespace: name + ":" + clientID}
}

// Ping always succeeds.
func (b *MemoryBackend) Ping(context.Context) error { return nil }

// Len reports how many keys a client namespace holds.
func (b *MemoryBackend) Len(name, clientID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data[name+":"+clientID])
}

type memoryScope struct {
	backend   *MemoryBackend
	name      string
	namespace string
}

func (s *memoryScope) Name() string { return s.name }

func (s *memoryScope) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, storageErr("read", s.name, key, err)
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	value, ok := s.backend.data[s.namespace][key]
	return value, ok, nil
}

func (s *memoryScope) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("write", s.name, key, err)
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	ns := s.backend.data[s.namespace]
	if ns == nil {
		ns = make(map[string]string)
		s.backend.data[s.namespace] = ns
	}
	ns[key] = value
	return nil
}

func (s *memoryScope) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("remove", s.name, key, err)
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.data[s.namespace], key)
	return nil
}

func (s *memoryScope) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return storageErr("clear", s.name, "", err)
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.data, s.namespace)
	return nil
}
