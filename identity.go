package authcore

import (
	"time"

	"github.com/cobaltadmin/authcore/token"
)

// RoleAdmin satisfies every role requirement.
const RoleAdmin = "admin"

// Identity is the resolved answer to "who is this request". It is a pure
// projection of the stored access token's claims; nothing here was checked
// against the backend.
type Identity struct {
	UserID       string
	Email        string
	TenantID     string
	ActingTenant string
	Role         string
	ExpiresAt    time.Time
}

func identityFromClaims(c *token.Claims) *Identity {
	id := &Identity{
		UserID:       c.Subject(),
		Email:        c.Email,
		TenantID:     c.TenantID,
		ActingTenant: c.ActingTenant,
		Role:         c.Role,
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// EffectiveTenant is the tenant this identity currently operates as: the
// acting tenant when one is set, the home tenant otherwise.
func (id *Identity) EffectiveTenant() string {
	if id.ActingTenant != "" {
		return id.ActingTenant
	}
	return id.TenantID
}

// HasRole reports whether the identity satisfies a role requirement.
// Admins satisfy everything; otherwise the match is exact.
func (id *Identity) HasRole(role string) bool {
	if id == nil {
		return false
	}
	if id.Role == RoleAdmin {
		return true
	}
	return role != "" && id.Role == role
}
