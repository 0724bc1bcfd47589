package authcore

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/cobaltadmin/authcore/store"
	"github.com/cobaltadmin/authcore/upstream"
)

// Authenticator is the long-lived session core: one per process, safe for
// concurrent use after [Builder.Build]. It owns the refresh coordinator,
// so concurrent sessions holding the same refresh token share one exchange
// no matter which request triggered it.
type Authenticator struct {
	config  Config
	issuer  upstream.TokenIssuer
	log     zerolog.Logger
	clock   func() time.Time
	metrics *Metrics

	onLogout func(ctx context.Context, reason string)

	// refreshGroup coalesces concurrent exchanges per refresh token.
	refreshGroup singleflight.Group
}

// Session binds the Authenticator to one request's credential store.
// SessionContext values are cheap; build a fresh one per request.
func (a *Authenticator) Session(s store.Store) *SessionContext {
	return &SessionContext{auth: a, store: s}
}

// Metrics exposes the counter set for exporters.
func (a *Authenticator) Metrics() *Metrics {
	if a == nil {
		return nil
	}
	return a.metrics
}

// MetricsSnapshot copies the current counters; the metrics/export
// packages read through this.
func (a *Authenticator) MetricsSnapshot() MetricsSnapshot {
	return a.Metrics().Snapshot()
}

func (a *Authenticator) fireLogout(ctx context.Context, reason string) {
	a.metrics.Inc(MetricLogout)
	if a.onLogout != nil {
		a.onLogout(ctx, reason)
	}
}
