package internaldefs

import (
	authcore "github.com/cobaltadmin/authcore"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs maps every session-core counter to its exported name. Both
// exporters iterate this list, so the two surfaces can never drift apart.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login exchanges."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Rejected or failed login exchanges."},
	{ID: authcore.MetricResolveAuthenticated, Name: "authcore_resolve_authenticated_total", Help: "Resolutions yielding an identity."},
	{ID: authcore.MetricResolveAnonymous, Name: "authcore_resolve_anonymous_total", Help: "Resolutions with no stored credential."},
	{ID: authcore.MetricResolveExpired, Name: "authcore_resolve_expired_total", Help: "Resolutions hitting an expired access token."},
	{ID: authcore.MetricResolveMalformed, Name: "authcore_resolve_malformed_total", Help: "Undecodable credentials cleared during resolution."},
	{ID: authcore.MetricRefreshSuccess, Name: "authcore_refresh_success_total", Help: "Completed refresh exchanges."},
	{ID: authcore.MetricRefreshFailure, Name: "authcore_refresh_failure_total", Help: "Terminally rejected refresh tokens."},
	{ID: authcore.MetricRefreshUnavailable, Name: "authcore_refresh_unavailable_total", Help: "Refresh exchanges that never reached the backend."},
	{ID: authcore.MetricRefreshCoalesced, Name: "authcore_refresh_coalesced_total", Help: "Callers who joined an in-flight exchange."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Explicit and forced logouts."},
}

// HistogramDefs lists the exported histograms.
var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricResolveLatency, Name: "authcore_resolve_latency_seconds", Help: "Session resolution latency histogram."},
}

// HistogramBounds are the upper bounds of the core's fixed buckets,
// in seconds.
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

// HistogramBoundSuffix mirrors HistogramBounds with metric-name-safe
// suffixes for backends without native histogram support.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both exposition formats want.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
