package middleware

import (
	"context"
	"net/http"
	"strings"

	"photo-exchange-bot/internal/httputil"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// TokenValidator checks owner bearer tokens
type TokenValidator interface {
	ValidateJWT(token string) (int64, error)
}

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				httputil.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			ownerID, err := tokens.ValidateJWT(parts[1])
			if err != nil {
				httputil.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOwnerID extracts the authenticated owner id from context
func GetOwnerID(ctx context.Context) int64 {
	ownerID, ok := ctx.Value(ownerIDKey).(int64)
	if !ok {
		return 0
	}
	return ownerID
}
