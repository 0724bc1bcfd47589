// Package token parses the claim payload of externally issued access tokens.
//
// # Architecture boundaries
//
// This package is a pure parser. Signature verification is delegated to the
// issuing service; nothing in here can establish that a token is authentic,
// only what it says. [DecodeUnsafe] is named the way it is so that no caller
// mistakes a successful decode for an authorization decision.
//
// # What this package must NOT do
//
//   - Perform network or storage I/O.
//   - Verify signatures or hold key material.
//   - Panic on any input, however malformed.
package token
