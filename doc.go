// Package sessionkit keeps the portal's client-side session: the persisted
// session record, the in-memory session state each client observes, and the
// logout flow that tears both down.
//
// The package is designed for concurrent server workloads: Engine and Holder
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// sessionkit is the public surface. It exposes [Engine], [Holder], [Builder],
// [Config] and value types ([State], [LogoutReport], ...). Logout orchestration
// and retry live under internal/; key layout and persistence live in the
// storage package.
//
// # Logout guarantees
//
//   - Persisted keys are removed before the in-memory user is dropped.
//   - After Logout returns, with or without an error, State().User is nil and
//     State().Loading is false.
//   - Storage failures are retried a bounded number of times, then the scopes
//     are cleared outright; only when that also fails is an error surfaced.
package sessionkit
