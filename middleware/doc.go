// Package middleware binds HTTP requests to a portal client's session holder.
//
// [RequireClient] reads the X-Client-ID header, resolves the client's
// [sessionkit.Holder] from the engine and stores it on the gin context. It also
// copies the caller's IP and user agent into the request context so audit
// events carry them. [RequestLogger] logs one structured line per request.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Session decisions
// belong to the Holder.
//
// # What this package must NOT do
//
//   - Access storage directly.
//   - Change session state.
package middleware
