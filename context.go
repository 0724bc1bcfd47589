package authcore

import "context"

type identityContextKey struct{}
type sessionContextKey struct{}

// WithIdentity attaches a resolved identity to ctx. The route guard does
// this after resolution so handlers never resolve twice.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFrom returns the identity attached to ctx, or nil for an
// anonymous request.
func IdentityFrom(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

// WithSession attaches the request's session context so handlers can
// refresh or log out without rebuilding the store binding.
func WithSession(ctx context.Context, sc *SessionContext) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sc)
}

// SessionFrom returns the session context attached to ctx, or nil.
func SessionFrom(ctx context.Context) *SessionContext {
	if ctx == nil {
		return nil
	}
	sc, _ := ctx.Value(sessionContextKey{}).(*SessionContext)
	return sc
}
