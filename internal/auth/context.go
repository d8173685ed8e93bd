package auth

import "context"

type ctxKey string

const (
	userIDKey    ctxKey = "userID"
	userEmailKey ctxKey = "userEmail"
)

func SetUserContext(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userEmailKey, email)
}

// UserFromContext returns the acting user's id, or "" when the request is
// anonymous.
func UserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func EmailFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userEmailKey).(string); ok {
		return v
	}
	return ""
}
