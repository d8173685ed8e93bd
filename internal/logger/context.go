package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

var requestIDKey ctxKey

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromCtx returns the process logger tagged with the request id when one is
// present, so every line of a checkout or webhook request correlates.
func FromCtx(ctx context.Context) *zap.Logger {
	id := RequestIDFrom(ctx)
	if id == "" {
		return L()
	}
	return L().With(zap.String("request_id", id))
}
