package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cobaltadmin/authcore/store"
	"github.com/cobaltadmin/authcore/upstream"
)

// EnsureFresh resolves the session, running one refresh exchange first if
// the stored access token has expired.
//
// Exactly one exchange runs per refresh token no matter how many sessions
// ask concurrently; latecomers wait for the winner's result. The exchange
// runs detached from the triggering request's context so an abandoned
// request cannot cancel it for everyone else.
//
// A rejected refresh token is terminal: the credential is cleared, the
// logout hook fires, and ErrRefreshFailed comes back. There is no retry
// path. A backend that could not be reached leaves the credential in
// place and returns ErrRefreshUnavailable.
func (sc *SessionContext) EnsureFresh(ctx context.Context) (*Identity, error) {
	id, err := sc.Resolve(ctx)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrCredentialExpired) {
		return nil, err
	}
	return sc.ForceRefresh(ctx)
}

// ForceRefresh runs the exchange regardless of what the local clock says
// about the stored access token. The API pipeline uses this when the
// backend rejects a token that still looks live here: revocation beats
// expiry arithmetic.
func (sc *SessionContext) ForceRefresh(ctx context.Context) (*Identity, error) {
	if sc == nil || sc.auth == nil {
		return nil, ErrNotReady
	}

	cred, err := sc.store.Read(ctx)
	if errors.Is(err, store.ErrNoCredential) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if cred.RefreshToken == "" {
		// Nothing to refresh from. The session is over.
		_ = sc.store.Clear(ctx)
		sc.auth.fireLogout(ctx, "refresh_rejected")
		sc.auth.metrics.Inc(MetricRefreshFailure)
		return nil, ErrRefreshFailed
	}

	return sc.refresh(ctx, cred.RefreshToken)
}

func (sc *SessionContext) refresh(ctx context.Context, refreshToken string) (*Identity, error) {
	a := sc.auth

	v, err, shared := a.refreshGroup.Do(refreshToken, func() (any, error) {
		exchCtx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx), a.config.Refresh.ExchangeTimeout)
		defer cancel()

		pair, err := a.issuer.Refresh(exchCtx, refreshToken)
		if err != nil {
			return nil, err
		}
		a.metrics.Inc(MetricRefreshSuccess)
		return pair, nil
	})
	if shared {
		a.metrics.Inc(MetricRefreshCoalesced)
	}

	switch {
	case errors.Is(err, upstream.ErrInvalidGrant):
		// The backend killed this session. Every waiting caller clears
		// its own store so cookie sessions drop their copy too.
		a.log.Info().Msg("refresh token rejected, ending session")
		_ = sc.store.Clear(ctx)
		a.fireLogout(ctx, "refresh_rejected")
		a.metrics.Inc(MetricRefreshFailure)
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	case err != nil:
		a.log.Warn().Err(err).Msg("refresh exchange unreachable")
		a.metrics.Inc(MetricRefreshUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrRefreshUnavailable, err)
	}

	pair := v.(*upstream.TokenPair)

	// Every caller persists the rotated pair to its own store: the
	// server-side store rewrites the same record, cookie stores each
	// need their own Set-Cookie. Persist even if the triggering request
	// died while the exchange ran.
	id, err := sc.storePair(context.WithoutCancel(ctx), pair)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("user", id.UserID).Bool("coalesced", shared).Msg("credential refreshed")
	return id, nil
}
