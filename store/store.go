package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoCredential is returned by Read when no credential is stored.
	// Every absence shape (missing cookie, missing key, unreadable record)
	// is normalized to this one error.
	ErrNoCredential = errors.New("no stored credential")

	// ErrStoreUnavailable wraps transport failures talking to a backing
	// store. It is distinct from ErrNoCredential: the credential may still
	// exist, we just could not reach it.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Credential is the unit of persistence: the token pair plus the access
// token's expiry, stored together so a Read never observes a half-rotated
// pair.
type Credential struct {
	AccessToken  string    `json:"access"`
	RefreshToken string    `json:"refresh"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Clone returns an independent copy so callers cannot mutate cached state.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Store is the persistence contract for one session's credential.
//
// Save atomically replaces whatever was stored before. Read returns the
// last saved credential or ErrNoCredential. Clear removes the credential
// and is idempotent: clearing an empty store succeeds.
type Store interface {
	Save(ctx context.Context, cred *Credential) error
	Read(ctx context.Context) (*Credential, error)
	Clear(ctx context.Context) error
}
