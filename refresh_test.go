package authcore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cobaltadmin/authcore/store"
	"github.com/cobaltadmin/authcore/upstream"
)

func expiredCredential(t *testing.T) *store.Credential {
	t.Helper()
	return &store.Credential{
		AccessToken:  mintToken(t, "u1", "acme", "viewer", time.Now().Add(-time.Minute)),
		RefreshToken: "rt-old",
	}
}

func TestEnsureFreshPassthroughWhenLive(t *testing.T) {
	issuer := &fakeIssuer{}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}
	ms.cred = &store.Credential{
		AccessToken:  mintToken(t, "u1", "acme", "viewer", time.Now().Add(time.Hour)),
		RefreshToken: "rt",
	}

	id, err := a.Session(ms).EnsureFresh(context.Background())
	if err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	if id.UserID != "u1" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if _, refreshes := issuer.calls(); refreshes != 0 {
		t.Fatalf("live credential must not trigger an exchange, saw %d", refreshes)
	}
}

func TestEnsureFreshExchangesExpiredCredential(t *testing.T) {
	newAccess := mintToken(t, "u1", "acme", "viewer", time.Now().Add(time.Hour))
	issuer := &fakeIssuer{refreshPair: &upstream.TokenPair{AccessToken: newAccess, RefreshToken: "rt-new"}}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}
	ms.cred = expiredCredential(t)

	id, err := a.Session(ms).EnsureFresh(context.Background())
	if err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	if id.UserID != "u1" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	cred := ms.credential()
	if cred.AccessToken != newAccess || cred.RefreshToken != "rt-new" {
		t.Fatalf("rotated pair not stored: %+v", cred)
	}
	if got := a.Metrics().Value(MetricRefreshSuccess); got != 1 {
		t.Fatalf("expected 1 refresh success, got %d", got)
	}
}

func TestEnsureFreshRejectedIsTerminal(t *testing.T) {
	var hookReason string
	issuer := &fakeIssuer{refreshErr: fmt.Errorf("%w: status 401", upstream.ErrInvalidGrant)}
	a, err := New().
		WithIssuer(issuer).
		OnLogout(func(ctx context.Context, reason string) { hookReason = reason }).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ms := &memStore{}
	ms.cred = expiredCredential(t)

	_, err = a.Session(ms).EnsureFresh(context.Background())
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}
	if ms.credential() != nil {
		t.Fatal("rejected refresh must clear the credential")
	}
	if hookReason != "refresh_rejected" {
		t.Fatalf("expected logout hook with refresh_rejected, got %q", hookReason)
	}
	if _, refreshes := issuer.calls(); refreshes != 1 {
		t.Fatalf("a rejected exchange must never be retried, saw %d calls", refreshes)
	}
}

func TestEnsureFreshUnreachableKeepsCredential(t *testing.T) {
	issuer := &fakeIssuer{refreshErr: errors.New("dial tcp: connection refused")}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}
	ms.cred = expiredCredential(t)

	_, err := a.Session(ms).EnsureFresh(context.Background())
	if !errors.Is(err, ErrRefreshUnavailable) {
		t.Fatalf("expected ErrRefreshUnavailable, got %v", err)
	}
	if ms.credential() == nil {
		t.Fatal("an unreachable backend must not destroy the session")
	}
	if _, refreshes := issuer.calls(); refreshes != 1 {
		t.Fatalf("expected exactly one exchange attempt, saw %d", refreshes)
	}
}

func TestEnsureFreshExpiredWithoutRefreshToken(t *testing.T) {
	issuer := &fakeIssuer{}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}
	ms.cred = &store.Credential{
		AccessToken: mintToken(t, "u1", "acme", "viewer", time.Now().Add(-time.Minute)),
	}

	_, err := a.Session(ms).EnsureFresh(context.Background())
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}
	if ms.credential() != nil {
		t.Fatal("credential must be cleared")
	}
	if _, refreshes := issuer.calls(); refreshes != 0 {
		t.Fatalf("nothing to exchange, saw %d calls", refreshes)
	}
}

func TestForceRefreshExchangesLiveCredential(t *testing.T) {
	newAccess := mintToken(t, "u1", "acme", "viewer", time.Now().Add(2*time.Hour))
	issuer := &fakeIssuer{refreshPair: &upstream.TokenPair{AccessToken: newAccess, RefreshToken: "rt-new"}}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}
	ms.cred = &store.Credential{
		// Still live locally, but the backend may have revoked it.
		AccessToken:  mintToken(t, "u1", "acme", "viewer", time.Now().Add(time.Hour)),
		RefreshToken: "rt-old",
	}

	id, err := a.Session(ms).ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}
	if id.UserID != "u1" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if _, refreshes := issuer.calls(); refreshes != 1 {
		t.Fatalf("expected a forced exchange, got %d", refreshes)
	}
	if cred := ms.credential(); cred.RefreshToken != "rt-new" {
		t.Fatalf("rotated pair not stored: %+v", cred)
	}
}

func TestEnsureFreshAnonymousPassthrough(t *testing.T) {
	a := newTestAuthenticator(t, &fakeIssuer{})
	if _, err := a.Session(&memStore{}).EnsureFresh(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestEnsureFreshSurvivesCallerCancellation(t *testing.T) {
	newAccess := mintToken(t, "u1", "acme", "viewer", time.Now().Add(time.Hour))
	issuer := &fakeIssuer{
		refreshPair:  &upstream.TokenPair{AccessToken: newAccess, RefreshToken: "rt-new"},
		refreshDelay: 50 * time.Millisecond,
	}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}
	ms.cred = expiredCredential(t)

	// The triggering request's context dies mid-exchange. The exchange
	// itself must still complete under its own deadline.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	id, err := a.Session(ms).EnsureFresh(ctx)
	if err != nil {
		t.Fatalf("EnsureFresh after caller cancellation: %v", err)
	}
	if id.UserID != "u1" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}
