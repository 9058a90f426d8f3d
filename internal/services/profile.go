package services

import (
	"context"
	"fmt"
	"sync"

	"photo-exchange-bot/internal/models"

	"github.com/rs/zerolog/log"
)

// ProfileService owns the cached owner profile. All reads and writes of
// owner content go through it; mutations persist before the lock is released.
type ProfileService struct {
	mu      sync.RWMutex
	store   Store
	profile *models.OwnerProfile
}

// NewProfileService creates an empty profile service. Call Hydrate before use.
func NewProfileService(store Store) *ProfileService {
	return &ProfileService{
		store:   store,
		profile: &models.OwnerProfile{Photos: []string{}},
	}
}

// Hydrate loads the owner profile from the store
func (s *ProfileService) Hydrate(ctx context.Context) error {
	profile, err := s.store.GetOwnerProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to load owner profile: %w", err)
	}
	photos, err := s.store.ListOwnerPhotos(ctx)
	if err != nil {
		return fmt.Errorf("failed to load owner photos: %w", err)
	}
	profile.Photos = photos

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	log.Info().Int("photos", len(photos)).Msg("Owner profile loaded")
	return nil
}

// Snapshot returns a copy of the current profile
func (s *ProfileService) Snapshot() *models.OwnerProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// Photos returns a copy of the owner's photo ids in upload order
func (s *ProfileService) Photos() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.profile.Photos...)
}

// PhotoCount returns the number of owner photos
func (s *ProfileService) PhotoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profile.Photos)
}

// Field returns one text field
func (s *ProfileService) Field(field models.OwnerField) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Field(field)
}

// AddPhoto appends a photo unless it is already present and reports
// whether it was new
func (s *ProfileService) AddPhoto(ctx context.Context, photoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile.HasPhoto(photoID) {
		return false
	}
	s.profile.Photos = append(s.profile.Photos, photoID)

	if _, err := s.store.AddOwnerPhoto(ctx, photoID); err != nil {
		log.Warn().Err(err).Str("photo_id", shortID(photoID)).Msg("Failed to persist owner photo")
		return true
	}
	stored, err := s.store.ListOwnerPhotos(ctx)
	if err != nil || !contains(stored, photoID) {
		log.Warn().Err(err).Str("photo_id", shortID(photoID)).Msg("Owner photo read-back mismatch")
	}

	log.Info().Int("photos", len(s.profile.Photos)).Msg("Owner photo added")
	return true
}

// SetField overwrites a text field
func (s *ProfileService) SetField(ctx context.Context, field models.OwnerField, value string) error {
	if !field.Valid() {
		return fmt.Errorf("unknown owner field %q", field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.SetField(field, value)
	if err := s.store.SetOwnerField(ctx, field, value); err != nil {
		log.Warn().Err(err).Str("field", string(field)).Msg("Failed to persist owner field")
		return nil
	}
	s.verifyField(ctx, field, value)

	log.Info().Str("field", string(field)).Msg("Owner field updated")
	return nil
}

// ClearField resets a text field to empty
func (s *ProfileService) ClearField(ctx context.Context, field models.OwnerField) error {
	if !field.Valid() {
		return fmt.Errorf("unknown owner field %q", field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.SetField(field, "")
	if err := s.store.ClearOwnerField(ctx, field); err != nil {
		log.Warn().Err(err).Str("field", string(field)).Msg("Failed to clear owner field")
		return nil
	}
	s.verifyField(ctx, field, "")

	log.Info().Str("field", string(field)).Msg("Owner field cleared")
	return nil
}

// ClearPhotos removes every owner photo
func (s *ProfileService) ClearPhotos(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.Photos = []string{}
	if err := s.store.ClearOwnerPhotos(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to clear owner photos")
		return
	}
	stored, err := s.store.ListOwnerPhotos(ctx)
	if err != nil || len(stored) != 0 {
		log.Warn().Err(err).Int("remaining", len(stored)).Msg("Owner photos read-back mismatch")
	}

	log.Info().Msg("Owner photos cleared")
}

// verifyField reads the field back and warns on mismatch.
// Memory stays authoritative either way.
func (s *ProfileService) verifyField(ctx context.Context, field models.OwnerField, want string) {
	stored, err := s.store.GetOwnerProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Str("field", string(field)).Msg("Owner field read-back failed")
		return
	}
	if got := stored.Field(field); got != want {
		log.Warn().
			Str("field", string(field)).
			Str("expected", want).
			Str("stored", got).
			Msg("Owner field read-back mismatch")
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// shortID truncates opaque file ids for logs
func shortID(id string) string {
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
