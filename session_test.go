package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cobaltadmin/authcore/store"
	"github.com/cobaltadmin/authcore/upstream"
)

func TestResolveAuthenticated(t *testing.T) {
	issuer := &fakeIssuer{}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}

	access := mintToken(t, "u1", "acme", "viewer", time.Now().Add(time.Hour))
	ms.cred = &store.Credential{AccessToken: access, RefreshToken: "rt"}

	sc := a.Session(ms)
	id, err := sc.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.UserID != "u1" || id.TenantID != "acme" || id.Role != "viewer" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if got := a.Metrics().Value(MetricResolveAuthenticated); got != 1 {
		t.Fatalf("expected 1 authenticated resolution, got %d", got)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	issuer := &fakeIssuer{}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}
	ms.cred = &store.Credential{
		AccessToken:  mintToken(t, "u1", "acme", "viewer", time.Now().Add(time.Hour)),
		RefreshToken: "rt",
	}

	sc := a.Session(ms)
	first, err := sc.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := sc.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i+2, err)
		}
		if *again != *first {
			t.Fatalf("resolution changed between calls: %+v vs %+v", again, first)
		}
	}
	if _, refreshes := issuer.calls(); refreshes != 0 {
		t.Fatalf("Resolve must never hit the backend, saw %d refresh calls", refreshes)
	}
}

func TestResolveAnonymous(t *testing.T) {
	a := newTestAuthenticator(t, &fakeIssuer{})
	sc := a.Session(&memStore{})

	if _, err := sc.Resolve(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestResolveExpiredKeepsCredential(t *testing.T) {
	a := newTestAuthenticator(t, &fakeIssuer{})
	ms := &memStore{}
	ms.cred = &store.Credential{
		AccessToken:  mintToken(t, "u1", "acme", "viewer", time.Now().Add(-time.Minute)),
		RefreshToken: "rt",
	}

	sc := a.Session(ms)
	if _, err := sc.Resolve(context.Background()); !errors.Is(err, ErrCredentialExpired) {
		t.Fatalf("expected ErrCredentialExpired, got %v", err)
	}
	if ms.credential() == nil {
		t.Fatal("expired credential must be kept for the refresh exchange")
	}
}

func TestResolveMalformedClearsCredential(t *testing.T) {
	a := newTestAuthenticator(t, &fakeIssuer{})
	ms := &memStore{}
	ms.cred = &store.Credential{AccessToken: "not-a-jwt", RefreshToken: "rt"}

	sc := a.Session(ms)
	if _, err := sc.Resolve(context.Background()); !errors.Is(err, ErrCredentialMalformed) {
		t.Fatalf("expected ErrCredentialMalformed, got %v", err)
	}
	if ms.credential() != nil {
		t.Fatal("malformed credential must be cleared")
	}
	if got := a.Metrics().Value(MetricResolveMalformed); got != 1 {
		t.Fatalf("expected 1 malformed resolution, got %d", got)
	}
}

func TestResolveRefreshOnlyCredential(t *testing.T) {
	a := newTestAuthenticator(t, &fakeIssuer{})
	ms := &memStore{}
	ms.cred = &store.Credential{RefreshToken: "rt"}

	sc := a.Session(ms)
	if _, err := sc.Resolve(context.Background()); !errors.Is(err, ErrCredentialExpired) {
		t.Fatalf("expected refresh-only credential to read as expired, got %v", err)
	}
}

func TestResolveExpiryLeeway(t *testing.T) {
	cfg := defaultConfig()
	cfg.Resolve.ExpiryLeeway = time.Minute

	a, err := New().WithIssuer(&fakeIssuer{}).WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ms := &memStore{}
	ms.cred = &store.Credential{
		// 30s past expiry: still inside the one-minute leeway.
		AccessToken:  mintToken(t, "u1", "acme", "viewer", time.Now().Add(-30*time.Second)),
		RefreshToken: "rt",
	}

	if _, err := a.Session(ms).Resolve(context.Background()); err != nil {
		t.Fatalf("expected leeway to keep the token live, got %v", err)
	}
}

func TestLoginStoresPair(t *testing.T) {
	access := mintToken(t, "u1", "acme", "admin", time.Now().Add(time.Hour))
	issuer := &fakeIssuer{loginPair: &upstream.TokenPair{AccessToken: access, RefreshToken: "rt-1"}}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}

	sc := a.Session(ms)
	id, err := sc.Login(context.Background(), "u1@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id.UserID != "u1" || id.Role != "admin" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	cred := ms.credential()
	if cred == nil || cred.AccessToken != access || cred.RefreshToken != "rt-1" {
		t.Fatalf("pair not stored: %+v", cred)
	}
	if got := a.Metrics().Value(MetricLoginSuccess); got != 1 {
		t.Fatalf("expected 1 login success, got %d", got)
	}
}

func TestLoginRejected(t *testing.T) {
	issuer := &fakeIssuer{loginErr: upstream.ErrInvalidGrant}
	a := newTestAuthenticator(t, issuer)
	ms := &memStore{}

	_, err := a.Session(ms).Login(context.Background(), "u1@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if ms.credential() != nil {
		t.Fatal("rejected login must not store anything")
	}
}

func TestLogoutClearsAndFiresHook(t *testing.T) {
	var (
		hookReason string
		hookCalls  int
	)
	a, err := New().
		WithIssuer(&fakeIssuer{}).
		OnLogout(func(ctx context.Context, reason string) {
			hookCalls++
			hookReason = reason
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ms := &memStore{}
	ms.cred = &store.Credential{AccessToken: "a", RefreshToken: "r"}
	sc := a.Session(ms)

	if err := sc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ms.credential() != nil {
		t.Fatal("credential must be cleared")
	}
	if hookCalls != 1 || hookReason != "logout" {
		t.Fatalf("hook calls=%d reason=%q", hookCalls, hookReason)
	}

	// Logging out twice is fine.
	if err := sc.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if _, err := sc.Resolve(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected anonymous after logout, got %v", err)
	}
}

func TestIdentityRoles(t *testing.T) {
	admin := &Identity{Role: "admin"}
	viewer := &Identity{Role: "viewer"}

	if !admin.HasRole("billing") {
		t.Fatal("admin must satisfy every role requirement")
	}
	if !viewer.HasRole("viewer") {
		t.Fatal("exact role match must pass")
	}
	if viewer.HasRole("billing") {
		t.Fatal("role mismatch must fail")
	}
	if (*Identity)(nil).HasRole("viewer") {
		t.Fatal("nil identity has no roles")
	}
}

func TestIdentityEffectiveTenant(t *testing.T) {
	id := &Identity{TenantID: "home", ActingTenant: "other"}
	if got := id.EffectiveTenant(); got != "other" {
		t.Fatalf("expected acting tenant, got %q", got)
	}
	id.ActingTenant = ""
	if got := id.EffectiveTenant(); got != "home" {
		t.Fatalf("expected home tenant, got %q", got)
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	id := &Identity{UserID: "u1"}
	ctx := WithIdentity(context.Background(), id)
	if got := IdentityFrom(ctx); got != id {
		t.Fatalf("identity did not round-trip: %+v", got)
	}
	if IdentityFrom(context.Background()) != nil {
		t.Fatal("expected nil identity on bare context")
	}
}
