package internal

import (
	"context"
	"time"
)

type ctxKey string

// ContextUserKey holds the id of the user the session token was issued to.
const ContextUserKey ctxKey = "userID"

func UserIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	userID, ok := ctx.Value(ContextUserKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
