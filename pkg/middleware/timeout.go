package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Timeout bounds each request by the given duration and answers 504 when
// the handler has not produced output in time. Searches are in-memory and
// fast; a request that hits this limit indicates a stuck dependency, not a
// slow query.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			tracked := &trackingWriter{ResponseWriter: w}
			finished := make(chan struct{})
			go func() {
				next.ServeHTTP(tracked, r.WithContext(ctx))
				close(finished)
			}()

			select {
			case <-finished:
			case <-ctx.Done():
				// Too late to write once the handler has started responding.
				if !tracked.started {
					slog.Warn("request timed out",
						"method", r.Method,
						"path", r.URL.Path,
						"limit", limit,
						"request_id", RequestIDFromRequest(r),
					)
					http.Error(w, `{"error":"request timeout"}`, http.StatusGatewayTimeout)
				}
			}
		})
	}
}

// trackingWriter records whether the wrapped handler has begun writing the
// response.
type trackingWriter struct {
	http.ResponseWriter
	started bool
}

func (t *trackingWriter) WriteHeader(code int) {
	t.started = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	t.started = true
	return t.ResponseWriter.Write(b)
}
