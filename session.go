package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cobaltadmin/authcore/store"
	"github.com/cobaltadmin/authcore/token"
	"github.com/cobaltadmin/authcore/upstream"
)

// SessionContext is an Authenticator bound to one session's credential
// store. All session operations live here.
type SessionContext struct {
	auth  *Authenticator
	store store.Store
}

// Resolve answers who this session is, from stored state alone. It is
// pure: no network, no token minting, and repeated calls with unchanged
// stored state return the same answer.
//
// Error semantics:
//
//   - ErrNoCredential: nothing stored, session is anonymous.
//   - ErrCredentialExpired: access token past expiry. The credential is
//     kept so EnsureFresh can attempt the refresh exchange.
//   - ErrCredentialMalformed: undecodable credential, cleared before return.
func (sc *SessionContext) Resolve(ctx context.Context) (*Identity, error) {
	if sc == nil || sc.auth == nil {
		return nil, ErrNotReady
	}
	a := sc.auth
	start := a.clock()
	defer func() {
		a.metrics.Observe(MetricResolveLatency, a.clock().Sub(start))
	}()

	cred, err := sc.store.Read(ctx)
	if errors.Is(err, store.ErrNoCredential) {
		a.metrics.Inc(MetricResolveAnonymous)
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if cred.AccessToken == "" {
		if cred.RefreshToken == "" {
			a.metrics.Inc(MetricResolveAnonymous)
			return nil, ErrNoCredential
		}
		// Refresh-only credential: the access token is gone but the
		// session might still be recoverable.
		a.metrics.Inc(MetricResolveExpired)
		return nil, ErrCredentialExpired
	}

	// Leeway extends a token's usable life, so judge expiry as of
	// now minus leeway.
	claims, err := token.DecodeUnsafeAt(cred.AccessToken, a.clock().Add(-a.config.Resolve.ExpiryLeeway))
	switch {
	case errors.Is(err, token.ErrExpired):
		a.metrics.Inc(MetricResolveExpired)
		return nil, ErrCredentialExpired
	case err != nil:
		a.log.Warn().Err(err).Msg("clearing undecodable credential")
		_ = sc.store.Clear(ctx)
		a.metrics.Inc(MetricResolveMalformed)
		return nil, fmt.Errorf("%w: %v", ErrCredentialMalformed, err)
	}

	a.metrics.Inc(MetricResolveAuthenticated)
	return identityFromClaims(claims), nil
}

// Login exchanges credentials with the identity backend and stores the
// resulting token pair.
func (sc *SessionContext) Login(ctx context.Context, email, password string) (*Identity, error) {
	if sc == nil || sc.auth == nil {
		return nil, ErrNotReady
	}
	a := sc.auth

	pair, err := a.issuer.Login(ctx, email, password)
	if errors.Is(err, upstream.ErrInvalidGrant) {
		a.metrics.Inc(MetricLoginFailure)
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if err != nil {
		a.metrics.Inc(MetricLoginFailure)
		return nil, err
	}

	id, err := sc.storePair(ctx, pair)
	if err != nil {
		a.metrics.Inc(MetricLoginFailure)
		return nil, err
	}

	a.metrics.Inc(MetricLoginSuccess)
	a.log.Info().Str("user", id.UserID).Str("tenant", id.TenantID).Msg("login")
	return id, nil
}

// Logout clears the stored credential and fires the logout hook. It is
// idempotent and purely local: no backend call stands between the user
// and being logged out.
func (sc *SessionContext) Logout(ctx context.Context) error {
	if sc == nil || sc.auth == nil {
		return ErrNotReady
	}
	err := sc.store.Clear(ctx)
	sc.auth.fireLogout(ctx, "logout")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// AccessToken returns the stored access token for outbound Authorization
// headers, with the same error semantics as Resolve. Callers wanting the
// refresh attempt folded in should call EnsureFresh first.
func (sc *SessionContext) AccessToken(ctx context.Context) (string, error) {
	if _, err := sc.Resolve(ctx); err != nil {
		return "", err
	}
	cred, err := sc.store.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return cred.AccessToken, nil
}

// storePair decodes the new access token, persists the pair, and returns
// the identity it carries. The pair is persisted in one Save so a
// concurrent Read never sees a half-rotated credential.
func (sc *SessionContext) storePair(ctx context.Context, pair *upstream.TokenPair) (*Identity, error) {
	claims, err := token.DecodeUnsafeAt(pair.AccessToken, sc.auth.clock())
	if err != nil {
		return nil, fmt.Errorf("backend issued unusable access token: %v", err)
	}

	id := identityFromClaims(claims)
	cred := &store.Credential{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    id.ExpiresAt,
	}
	if err := sc.store.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return id, nil
}
