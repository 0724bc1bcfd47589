// Package middleware enforces route access on top of authcore session
// resolution.
//
// # Guards
//
//   - [Guard] — classifies the route, resolves (and refreshes) the
//     session once, redirects per the route class, and injects the
//     identity into the request context.
//   - [RequireRole] — role check for already-guarded routes.
//   - [RequireAPI] — 401 JSON variant for API routes, no redirects.
//
// Routes are classified by a [RouteTable]. Anything the table does not
// list is private: an unknown route can only fail closed.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into session calls. It does NOT
// implement authentication logic itself; all decisions are delegated to
// the session context.
//
// # What this package must NOT do
//
//   - Read or write credential stores directly.
//   - Retry a failed refresh; one attempt per request, then redirect.
//   - Leak resolution errors to the client beyond status and location.
package middleware
