package auth

import "context"

type ctxKey struct{}

func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(Session)
	return sess, ok
}

// HasRole reports whether the session holds one of the allowed roles.
func (s Session) HasRole(allowed ...string) bool {
	for _, role := range allowed {
		if s.Role == role {
			return true
		}
	}
	return false
}
