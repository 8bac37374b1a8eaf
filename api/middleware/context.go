package middleware

import "context"

type contextKey string

const (
	ctxUserID        contextKey = "user_id"
	ctxCartSessionID contextKey = "cart_session_id"
)

// UserIDFromContext returns the authenticated admin id, if any.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// CartSessionIDFromContext returns the cart session bound by CartSession.
func CartSessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartSessionID).(string); ok {
		return v
	}
	return ""
}

// WithCartSessionID injects the cart session identifier into the context.
func WithCartSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartSessionID, sessionID)
}
