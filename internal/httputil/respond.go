package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends an error response
func Error(w http.ResponseWriter, message string, statusCode int) {
	JSON(w, ErrorResponse{Error: message}, statusCode)
}

// JSON writes body as a JSON response
func JSON(w http.ResponseWriter, body interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}
