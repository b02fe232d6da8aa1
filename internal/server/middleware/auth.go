// Package middleware contains HTTP middleware for the API server.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"spoils/internal/auth"
)

// APIKeyAuth requires a bearer token matching apiKey on the wrapped
// endpoints. An empty apiKey disables the check, which is the local
// development default. Keys are compared by hash in constant time.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	wantHash := auth.HashKey(apiKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			gotHash := auth.HashKey(parts[1])
			if subtle.ConstantTimeCompare([]byte(gotHash), []byte(wantHash)) != 1 {
				http.Error(w, "Invalid authorization token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
