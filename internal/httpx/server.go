package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"tienda-be/internal/auth"
	"tienda-be/internal/logger"
	"tienda-be/internal/middleware"
)

func NewRouter(jwtSecret []byte, h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(auth.Middleware(jwtSecret))
	r.Use(middleware.RateLimitMiddleware)
	r.Use(chimw.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	h.Register(r)
	return r
}
