package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity payload embedded in an access token. Tenant and
// acting-tenant identifiers support cross-tenant impersonation: ActingTenant
// is the tenant the caller currently operates under, which may differ from
// the home TenantID.
type Claims struct {
	Email        string `json:"email,omitempty"`
	TenantID     string `json:"tid,omitempty"`
	ActingTenant string `json:"act,omitempty"`
	Role         string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Subject returns the subject identifier claim.
func (c *Claims) Subject() string {
	if c == nil {
		return ""
	}
	return c.RegisteredClaims.Subject
}

// ExpiresUnix returns the expiry claim in seconds since epoch, or 0 when
// the claim is missing.
func (c *Claims) ExpiresUnix() int64 {
	if c == nil || c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}

// Expired reports whether the token's expiry is at or before now.
// Expiry is always present on decoded claims; see [DecodeUnsafe].
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.Time.After(now)
}

// EffectiveTenant returns the acting tenant when set, otherwise the home
// tenant.
func (c *Claims) EffectiveTenant() string {
	if c == nil {
		return ""
	}
	if c.ActingTenant != "" {
		return c.ActingTenant
	}
	return c.TenantID
}
