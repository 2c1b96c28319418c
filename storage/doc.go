// Package storage provides the persisted-session store: per-client, namespaced
// key-value scopes backed by Redis (or memory), plus the session record codec.
//
// # Scopes
//
// Every portal client owns two scopes, [ScopeLocal] (durable) and
// [ScopeSession] (TTL-bound). A scope only ever sees keys inside its own
// client namespace, so [Scope.Clear] can never touch another client's data.
//
// # Architecture boundaries
//
// This package owns key layout, persistence and the [Record] encoding. It does
// NOT decide when to retry, when to fall back to a full clear, or what the
// in-memory session state looks like. Those responsibilities belong to the
// logout flow and the session holder.
//
// # What this package must NOT do
//
//   - Import sessionkit or any internal package.
//   - Enumerate keys by name pattern to guess which ones are auth-related.
//   - Swallow backend failures: every failure surfaces as a [*StorageError].
package storage
