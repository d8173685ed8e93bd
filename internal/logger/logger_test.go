package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func swapObserved(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, observed := observer.New(zapcore.InfoLevel)
	original := base
	base = zap.New(core)
	t.Cleanup(func() { base = original })
	return observed
}

func TestInit(t *testing.T) {
	original := base
	defer func() { base = original }()

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, base)
	})

	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, base)
	})

	t.Run("LazyFallback", func(t *testing.T) {
		base = nil
		assert.NotNil(t, L())
		assert.NotNil(t, base)
	})
}

func TestRequestIDPlumbing(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		tagged := WithRequestID(ctx, "delivery-42")
		assert.Equal(t, "delivery-42", RequestIDFrom(tagged))
	})

	t.Run("AbsentIsEmpty", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFrom(ctx))
	})
}

func TestFromCtx(t *testing.T) {
	observed := swapObserved(t)

	t.Run("TaggedWhenPresent", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "delivery-42")
		FromCtx(ctx).Info("payment notification queued")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		assert.Equal(t, "delivery-42", logs[0].ContextMap()["request_id"])
	})

	t.Run("UntaggedWhenAbsent", func(t *testing.T) {
		FromCtx(context.Background()).Info("order created")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		_, ok := logs[0].ContextMap()["request_id"]
		assert.False(t, ok)
	})
}

func TestSync(t *testing.T) {
	assert.NotPanics(t, Sync)
}

func TestRequestIDMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestIDFrom(r.Context()))
	})
	handler := RequestIDMiddleware(next)

	t.Run("MintsWhenMissing", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/orders", nil))

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("KeepsGatewayID", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhooks/payment", nil)
		req.Header.Set("X-Request-ID", "delivery-42")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "delivery-42", w.Header().Get("X-Request-ID"))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	observed := swapObserved(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := LoggingMiddleware(next)

	t.Run("LogsMethodPathStatus", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/orders", nil))

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		assert.Equal(t, "request handled", logs[0].Message)
		fields := logs[0].ContextMap()
		assert.Equal(t, "/orders", fields["path"])
		assert.EqualValues(t, http.StatusCreated, fields["status"])
	})

	t.Run("SkipsHealthProbes", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

		assert.Empty(t, observed.TakeAll())
	})
}
