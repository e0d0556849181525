package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/comunityalert/backend/internal/metrics"
)

// NewMetrics returns a middleware recording request count and duration per
// route pattern. The chi route pattern ("/api/issues/{id}") is used instead
// of the raw path to keep label cardinality bounded.
func NewMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			m.ObserveRequest(r.Method, path, ww.Status(), start)
		})
	}
}
