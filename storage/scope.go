package storage

import (
	"context"
	"errors"
	"fmt"
)

const (
	// ScopeLocal is the durable scope; values survive until removed.
	ScopeLocal = "local"
	// ScopeSession is the short-lived scope; values expire with the client session.
	ScopeSession = "session"
)

// ErrStorage matches every [*StorageError] via errors.Is.
var ErrStorage = errors.New("storage error")

// Scope is one client's view of a storage scope.
type Scope interface {
	Name() string
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Backend hands out client-bound scopes.
type Backend interface {
	Scope(name, clientID string) Scope
	Ping(ctx context.Context) error
}

// StorageError reports a failed read, write, remove or clear.
type StorageError struct {
	Op    string
	Scope string
	Key   string
	Err   error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Scope, e.Err)
	}
	return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Scope, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op, scope, key string, err error) error {
	return &StorageError{Op: op, Scope: scope, Key: key, Err: err}
}
