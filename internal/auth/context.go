package auth

import "context"

type contextKey struct{}

// WithUserID stamps the authenticated uid onto the context.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, contextKey{}, uid)
}

// UserID returns the uid stamped by the auth middleware.
func UserID(ctx context.Context) (string, error) {
	uid, ok := ctx.Value(contextKey{}).(string)
	if !ok || uid == "" {
		return "", ErrUnauthenticated
	}
	return uid, nil
}
