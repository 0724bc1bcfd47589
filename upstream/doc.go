// Package upstream is the HTTP client for the identity backend: the
// service that actually verifies passwords, signs tokens, and rotates
// refresh tokens. Everything else in this module treats tokens as opaque
// or decode-only; this package is the only place new tokens come from.
package upstream
