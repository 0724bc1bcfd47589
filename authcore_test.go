package authcore

import (
	"context"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/cobaltadmin/authcore/store"
	"github.com/cobaltadmin/authcore/token"
	"github.com/cobaltadmin/authcore/upstream"
)

// mintToken signs a test access token. Resolution never verifies the
// signature, so any key works.
func mintToken(t *testing.T, sub, tenant, role string, exp time.Time) string {
	t.Helper()
	claims := token.Claims{
		Email:    sub + "@example.com",
		TenantID: tenant,
		Role:     role,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: gojwt.NewNumericDate(exp),
		},
	}
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

// memStore is an in-memory store.Store for exercising session logic
// without cookies or Redis.
type memStore struct {
	mu   sync.Mutex
	cred *store.Credential
	fail bool
}

func (m *memStore) Save(ctx context.Context, cred *store.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return store.ErrStoreUnavailable
	}
	m.cred = cred.Clone()
	return nil
}

func (m *memStore) Read(ctx context.Context) (*store.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, store.ErrStoreUnavailable
	}
	if m.cred == nil {
		return nil, store.ErrNoCredential
	}
	return m.cred.Clone(), nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}

func (m *memStore) credential() *store.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred.Clone()
}

// fakeIssuer scripts the identity backend.
type fakeIssuer struct {
	mu           sync.Mutex
	loginPair    *upstream.TokenPair
	loginErr     error
	refreshPair  *upstream.TokenPair
	refreshErr   error
	refreshDelay time.Duration
	loginCalls   int
	refreshCalls int
}

func (f *fakeIssuer) Login(ctx context.Context, email, password string) (*upstream.TokenPair, error) {
	f.mu.Lock()
	f.loginCalls++
	pair, err := f.loginPair, f.loginErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (f *fakeIssuer) Refresh(ctx context.Context, refreshToken string) (*upstream.TokenPair, error) {
	f.mu.Lock()
	f.refreshCalls++
	pair, err, delay := f.refreshPair, f.refreshErr, f.refreshDelay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (f *fakeIssuer) calls() (login, refresh int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.refreshCalls
}

func newTestAuthenticator(t *testing.T, issuer upstream.TokenIssuer) *Authenticator {
	t.Helper()
	a, err := New().WithIssuer(issuer).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a
}
