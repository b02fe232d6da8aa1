package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"spoils/internal/logger"
)

// RequestID tags every request with an id, stores it on the context
// for downstream log correlation, and echoes it back to the caller.
func RequestID(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := logger.WithRequestID(r.Context(), requestID)
			w.Header().Set("X-Request-ID", requestID)

			log.Debug("request received",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
