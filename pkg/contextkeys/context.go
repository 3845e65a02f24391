package contextkeys

import "context"

// contextKey is unexported to avoid collisions with keys from other packages.
type contextKey string

// PrincipalContextKey is the key under which middleware stores the
// authenticated user ID for downstream code.
const PrincipalContextKey = contextKey("principal")

// WithPrincipal stores the authenticated user ID on the context.
func WithPrincipal(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, userID)
}

// PrincipalFromContext returns the authenticated user ID, or "".
func PrincipalFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(PrincipalContextKey).(string); ok {
		return id
	}
	return ""
}
