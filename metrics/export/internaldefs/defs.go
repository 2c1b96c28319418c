package internaldefs

import (
	"github.com/parentsmadrasa/sessionkit"
)

// CounterDef maps an engine counter to its exported name.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// HistogramDef maps an engine histogram to its exported name.
type HistogramDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: sessionkit.MetricSignIn, Name: "portal_session_sign_in_total", Help: "Sessions persisted on sign-in."},
	{ID: sessionkit.MetricSignInFailure, Name: "portal_session_sign_in_failure_total", Help: "Sign-ins whose session could not be persisted."},
	{ID: sessionkit.MetricSessionRestored, Name: "portal_session_restored_total", Help: "Sessions rehydrated from storage."},
	{ID: sessionkit.MetricLogout, Name: "portal_session_logout_total", Help: "Logouts that cleared persisted session data."},
	{ID: sessionkit.MetricLogoutFailure, Name: "portal_session_logout_failure_total", Help: "Logouts that left persisted session data behind."},
	{ID: sessionkit.MetricLogoutRetry, Name: "portal_session_logout_retry_total", Help: "Removal passes retried after a failure."},
	{ID: sessionkit.MetricStorageRemoveFailure, Name: "portal_session_storage_remove_failure_total", Help: "Individual key removals rejected by storage."},
	{ID: sessionkit.MetricNuclearFallback, Name: "portal_session_fallback_clear_total", Help: "Scope clears run after removal retries were exhausted."},
	{ID: sessionkit.MetricNuclearFallbackFailure, Name: "portal_session_fallback_clear_failure_total", Help: "Fallback scope clears that failed."},
	{ID: sessionkit.MetricForceLogout, Name: "portal_session_force_logout_total", Help: "Force logouts that cleared storage."},
	{ID: sessionkit.MetricForceLogoutFailure, Name: "portal_session_force_logout_failure_total", Help: "Force logouts whose clear failed."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: sessionkit.MetricLogoutLatency, Name: "portal_session_logout_latency_seconds", Help: "Logout latency including retries and fallback."},
}

// AuditDroppedName is the counter for events dropped by the audit buffer.
const AuditDroppedName = "portal_session_audit_dropped_total"

// HistogramBounds are the upper bounds of the engine's latency buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSeconds mirrors HistogramBounds for exporters that need numbers.
// The last bucket is unbounded and has no entry.
var HistogramBoundSeconds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
