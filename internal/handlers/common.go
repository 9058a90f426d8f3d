package handlers

import (
	"net/http"

	"photo-exchange-bot/internal/httputil"
)

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
