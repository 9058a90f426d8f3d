package handlers

import (
	"context"
	"net/http"

	"photo-exchange-bot/internal/httputil"
	"photo-exchange-bot/internal/middleware"
	"photo-exchange-bot/internal/models"

	"github.com/rs/zerolog/log"
)

// InterestLister reads stored interest records
type InterestLister interface {
	ListInterestRecords(ctx context.Context) ([]*models.InterestRecord, error)
}

// ProfileReader exposes the cached owner profile
type ProfileReader interface {
	Snapshot() *models.OwnerProfile
}

// OwnerHandler serves the owner's read-only API
type OwnerHandler struct {
	profile   ProfileReader
	interests InterestLister
}

// NewOwnerHandler creates a new owner handler
func NewOwnerHandler(profile ProfileReader, interests InterestLister) *OwnerHandler {
	return &OwnerHandler{profile: profile, interests: interests}
}

// GetProfile handles GET /api/v1/profile
func (h *OwnerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, h.profile.Snapshot(), http.StatusOK)
}

// ListInterests handles GET /api/v1/interests
func (h *OwnerHandler) ListInterests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.interests.ListInterestRecords(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Int64("owner_id", middleware.GetOwnerID(ctx)).
			Msg("Failed to list interests")
		httputil.Error(w, "Failed to list interests", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*models.InterestRecord{}
	}

	httputil.JSON(w, map[string]interface{}{
		"interests": records,
		"total":     len(records),
	}, http.StatusOK)
}
