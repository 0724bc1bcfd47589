package authcore

import "errors"

var (
	// ErrNoCredential means nothing is stored for this session. Private
	// routes treat it as logged out.
	ErrNoCredential = errors.New("no credential")
	// ErrCredentialMalformed means the stored access token could not be
	// decoded. The credential is cleared before this is returned.
	ErrCredentialMalformed = errors.New("credential malformed")
	// ErrCredentialExpired means the access token's expiry has passed. The
	// credential is NOT cleared: the refresh coordinator gets first claim
	// on the stored refresh token.
	ErrCredentialExpired = errors.New("credential expired")
	// ErrInvalidCredentials means the identity backend rejected a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshFailed means the backend rejected the refresh token. The
	// session is over: the credential has been cleared and the logout hook
	// fired before this is returned.
	ErrRefreshFailed = errors.New("refresh failed")
	// ErrRefreshUnavailable means the refresh exchange could not reach the
	// backend. The stored credential is kept; the request is treated as
	// unauthenticated without destroying the session.
	ErrRefreshUnavailable = errors.New("refresh backend unavailable")
	// ErrStoreUnavailable wraps credential store transport failures.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrNotReady is returned when an Authenticator method is called on a
	// nil or unbuilt instance.
	ErrNotReady = errors.New("authenticator not initialized")
)
