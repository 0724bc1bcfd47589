// Package prometheus exposes session-core metrics for Prometheus scraping.
//
// [NewPrometheusExporter] accepts an [authcore.Authenticator] and exposes
// an [http.Handler] that renders every core counter and histogram in
// Prometheus text exposition format. Counter names are prefixed
// authcore_*_total; the single histogram is
// authcore_resolve_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate session state.
package prometheus
