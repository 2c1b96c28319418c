// Package flows contains the orchestrators behind the session holder's
// logout operations.
//
// Each flow function accepts a typed dependency struct and returns a result
// value. Storage scopes, logging and metric hooks arrive through the deps, so
// the flows can be tested exhaustively with fault-injecting scopes.
//
// # Architecture boundaries
//
// Flows coordinate storage scopes, the retry combinator and diagnostic
// logging. They do NOT own in-memory session state; the holder applies the
// state transitions around each flow call.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import sessionkit (to avoid import cycles).
//   - Abort a removal pass because one key failed.
package flows
