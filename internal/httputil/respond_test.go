package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, "Invalid token", http.StatusUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Invalid token", body.Error)
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, map[string]int{"total": 2}, http.StatusOK)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":2}`, rec.Body.String())
}
