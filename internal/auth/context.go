package auth

import "context"

type authorizationContextKey struct{}

// WithAuthorization attaches a call-scoped authorization to the context.
func WithAuthorization(ctx context.Context, authz *Authorization) context.Context {
	if authz == nil {
		return ctx
	}
	return context.WithValue(ctx, authorizationContextKey{}, authz)
}

// AuthorizationFromContext retrieves the call's authorization.
func AuthorizationFromContext(ctx context.Context) (*Authorization, bool) {
	authz, ok := ctx.Value(authorizationContextKey{}).(*Authorization)
	return authz, ok
}
