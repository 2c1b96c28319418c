// Package httpapi serves the portal session endpoints over gin.
//
// Routes under /api/v1 require the X-Client-ID header and operate on that
// client's session holder and Profile screen. /metrics renders Prometheus text
// and /healthz pings storage.
//
// Holders and screens live in memory only while they matter: a signed-out
// client with nothing on screen is dropped when its request ends, and any
// client is dropped after Options.IdleTTL without requests. The next request
// rebuilds both and restores the session from storage.
package httpapi
