// Package prometheus renders session engine metrics in Prometheus text
// exposition format.
//
// Counters are named portal_session_*_total; the single histogram is
// portal_session_logout_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
