package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestLogging logs method, path and duration for every request.
func RequestLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}
