package middleware

import (
	"context"

	"github.com/connectedautocare/console-gateway/pkg/platform"
)

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxUser      contextKey = "session_user"
)

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

func UserFromContext(ctx context.Context) *platform.User {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxUser).(*platform.User); ok {
		return v
	}
	return nil
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithUser injects the verified user into the context for downstream handlers.
func WithUser(ctx context.Context, user *platform.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUser, user)
}
