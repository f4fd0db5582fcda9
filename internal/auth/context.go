package auth

import "context"

// SessionCookieName is the cookie holding the opaque session token.
const SessionCookieName = "clinica_session"

type contextKey struct{}

// Context carries the resolved identity of an authorized request.
type Context struct {
	NurseID int64
	Codigo  string
	IsAdmin bool
	Token   string
}

func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (Context, bool) {
	ac, ok := ctx.Value(contextKey{}).(Context)
	return ac, ok
}

// NurseID returns the authenticated account id, or 0 when the request never
// passed the auth middleware.
func NurseID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.NurseID
}

func IsAdmin(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ac.IsAdmin
}
