package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTokens struct{}

func (fakeTokens) ValidateJWT(token string) (int64, error) {
	if token == "good" {
		return 99, nil
	}
	return 0, errors.New("bad token")
}

func TestAuthMiddleware(t *testing.T) {
	var seen int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetOwnerID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthMiddleware(fakeTokens{})(next)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"happy path - valid token", "Bearer good", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusNoContent {
				assert.Equal(t, int64(99), seen)
			} else {
				assert.Zero(t, seen)
			}
		})
	}
}
