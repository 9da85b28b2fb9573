// Package middleware carries the HTTP middleware shared by the API routes.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// RequestLogger emits one structured log line per request, carrying the
// request id through so webhook deliveries can be traced end to end.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)
			next.ServeHTTP(w, r)
			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", reqID,
				"remote_ip", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
