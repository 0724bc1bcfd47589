// Package store persists the current credential for one logical session.
//
// Two realizations exist and are never mixed for the same session:
//
//   - [CookieStore] for server-rendered deployments: http-only, sealed
//     cookies scoped to a single request/response pair.
//   - [RedisStore] for API deployments: one Redis key per session ID, with
//     the browser holding only the opaque session identifier.
//
// The deployment picks one strategy when the session context is built;
// nothing in this package selects a strategy implicitly.
//
// # What this package must NOT do
//
//   - Decode or interpret token claims (that is the token package's job).
//   - Expose partial writes: every mutation is a single-step overwrite.
package store
