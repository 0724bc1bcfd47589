// Package authcore is the session and authentication core for a
// multi-tenant admin application. It resolves the current identity from a
// stored token pair, keeps that pair fresh through coordinated refresh
// exchanges, and fails closed everywhere the answer is uncertain.
//
// The long-lived object is [Authenticator], built once through
// [Builder.Build]. Each request then binds it to a credential store with
// [Authenticator.Session], yielding a [SessionContext] whose Resolve,
// EnsureFresh, Login, and Logout methods operate on that one session.
//
// # Architecture boundaries
//
// authcore never verifies token signatures; the identity backend signed
// them and the identity backend checks them. Resolution here is decode-only
// (see the token package) and exists to answer one question fast: who is
// this request, and is the credential still usable.
//
// # What this package must NOT do
//
//   - Talk HTTP to the identity backend directly (that is the upstream
//     package's job, injected as a [TokenIssuer]).
//   - Retry a failed refresh exchange. A rejected refresh token is dead;
//     the only correct follow-up is logout.
//   - Resolve differently on repeated calls with unchanged stored state.
package authcore
