package sessionkit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/parentsmadrasa/sessionkit/jwt"
	"github.com/parentsmadrasa/sessionkit/storage"
	"github.com/rs/zerolog"
)

const maxClientIDLength = 128

// Engine owns the storage backend and one [Holder] per portal client.
//
// Engine instances are built by [Builder.Build] and are safe for concurrent use.
type Engine struct {
	config  Config
	backend storage.Backend
	keys    storage.KeySet
	markers *jwt.Manager
	log     zerolog.Logger
	audit   *auditDispatcher
	metrics *Metrics

	mu      sync.Mutex
	holders map[string]*Holder
	closed  atomic.Bool
}

// Holder returns the session holder for clientID, creating it on first use.
// The same *Holder is returned for every call with the same client.
func (e *Engine) Holder(clientID string) (*Holder, error) {
	if e == nil || e.closed.Load() {
		return nil, ErrEngineNotReady
	}
	if err := validateClientID(clientID); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if h, ok := e.holders[clientID]; ok {
		return h, nil
	}
	h := newHolder(e, clientID)
	e.holders[clientID] = h
	return h, nil
}

// Forget drops the cached holder for clientID so the next Holder call builds a
// fresh one. Persisted data is untouched; a later Restore brings the user back.
// A holder with a logout in flight is kept and Forget reports false.
func (e *Engine) Forget(clientID string) bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.holders[clientID]
	if !ok {
		return true
	}
	if h.State().Loading {
		return false
	}
	delete(e.holders, clientID)
	return true
}

// Holders reports how many client holders are cached.
func (e *Engine) Holders() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.holders)
}

// Ping checks the storage backend.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.backend.Ping(ctx)
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// Keys returns the managed key set.
func (e *Engine) Keys() storage.KeySet {
	return storage.KeySet{
		Primary:   e.keys.Primary,
		Auxiliary: append([]string(nil), e.keys.Auxiliary...),
	}
}

// Close stops the audit dispatcher and rejects further Holder calls.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closed.Store(true)
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports events dropped by a full audit buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the current counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func validateClientID(clientID string) error {
	if clientID == "" || len(clientID) > maxClientIDLength {
		return ErrInvalidClientID
	}
	for _, r := range clientID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidClientID, r)
		}
	}
	return nil
}
