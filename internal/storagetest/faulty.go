// Package storagetest provides fault-injecting storage for tests.
package storagetest

import (
	"context"
	"errors"
	"sync"

	"github.com/parentsmadrasa/sessionkit/storage"
)

// ErrInjected is the cause carried by every injected failure.
var ErrInjected = errors.New("injected storage failure")

// Faults configures which calls fail. Counts are per scope name and key; a
// negative count fails forever.
type Faults struct {
	// RemoveFailures fails the first N Remove calls for a key (any key when
	// the map holds "*").
	RemoveFailures map[string]int
	// ClearFailures fails the first N Clear calls.
	ClearFailures int
	// WriteFailures fails the first N Write calls.
	WriteFailures int
	// OnRemove runs before every Remove, outside the backend lock. Tests use
	// it to stall a removal pass.
	OnRemove func(scope, key string)
}

// Backend wraps a real backend and injects failures into its scopes.
type Backend struct {
	inner storage.Backend

	mu      sync.Mutex
	faults  Faults
	removes map[string]int
	clears  map[string]int
	writes  map[string]int
	calls   map[string]int
}

// Wrap returns a fault-injecting view of inner.
func Wrap(inner storage.Backend, faults Faults) *Backend {
	return &Backend{
		inner:   inner,
		faults:  faults,
		removes: make(map[string]int),
		clears:  make(map[string]int),
		writes:  make(map[string]int),
		calls:   make(map[string]int),
	}
}

// SetFaults replaces the fault plan and resets failure counters.
func (b *Backend) SetFaults(f Faults) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults = f
	b.removes = make(map[string]int)
	b.clears = make(map[string]int)
	b.writes = make(map[string]int)
}

// Calls returns how many times op ("remove", "clear", "write", "read") ran.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *Backend) Scope(name, clientID string) storage.Scope {
	return &scope{backend: b, inner: b.inner.Scope(name, clientID), name: name}
}

func (b *Backend) Ping(ctx context.Context) error { return b.inner.Ping(ctx) }

func (b *Backend) shouldFail(counter map[string]int, id string, limit int) bool {
	if limit == 0 {
		return false
	}
	if limit < 0 {
		return true
	}
	counter[id]++
	return counter[id] <= limit
}

func (b *Backend) removeFails(scopeName, key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["remove"]++
	limit, ok := b.faults.RemoveFailures[key]
	if !ok {
		limit, ok = b.faults.RemoveFailures["*"]
	}
	if !ok {
		return false
	}
	return b.shouldFail(b.removes, scopeName+"/"+key, limit)
}

func (b *Backend) removeHook() func(scope, key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.faults.OnRemove
}

func (b *Backend) clearFails() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["clear"]++
	return b.shouldFail(b.clears, "clear", b.faults.ClearFailures)
}

func (b *Backend) writeFails() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["write"]++
	return b.shouldFail(b.writes, "write", b.faults.WriteFailures)
}

func (b *Backend) countRead() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["read"]++
}

type scope struct {
	backend *Backend
	inner   storage.Scope
	name    string
}

func (s *scope) Name() string { return s.name }

func (s *scope) Read(ctx context.Context, key string) (string, bool, error) {
	s.backend.countRead()
	return s.inner.Read(ctx, key)
}

func (s *scope) Write(ctx context.Context, key, value string) error {
	if s.backend.writeFails() {
		return &storage.StorageError{Op: "write", Scope: s.name, Key: key, Err: ErrInjected}
	}
	return s.inner.Write(ctx, key, value)
}

func (s *scope) Remove(ctx context.Context, key string) error {
	if hook := s.backend.removeHook(); hook != nil {
		hook(s.name, key)
	}
	if s.backend.removeFails(s.name, key) {
		return &storage.StorageError{Op: "remove", Scope: s.name, Key: key, Err: ErrInjected}
	}
	return s.inner.Remove(ctx, key)
}

func (s *scope) Clear(ctx context.Context) error {
	if s.backend.clearFails() {
		return &storage.StorageError{Op: "clear", Scope: s.name, Err: ErrInjected}
	}
	return s.inner.Clear(ctx)
}
