package auth

import "context"

// Session is the authenticated identity for one request. It is established
// by the JWT middleware at login verification and passed explicitly through
// context; nothing reads ambient storage.
type Session struct {
	UserID string
	Role   string // student|instructor
	Name   string
}

type ctxKey struct{}

var ctxKeySession = ctxKey{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFromContext returns the request session, false when unauthenticated.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(Session)
	return s, ok
}
