package models

import "time"

// VisitorState is the stage a visitor has reached
type VisitorState string

const (
	StateAwaitingVerification VisitorState = "AWAITING_VERIFICATION"
	StateInMainMenu           VisitorState = "IN_MAIN_MENU"
	StateAwaitingAboutText    VisitorState = "AWAITING_ABOUT_TEXT"
)

// VisitorSession tracks one visitor's progress
type VisitorSession struct {
	VisitorID            int64               `json:"visitor_id"`
	ChatID               int64               `json:"chat_id"`
	Username             string              `json:"username"`
	State                VisitorState        `json:"state"`
	VerifiedPhotos       []string            `json:"verified_photos"`
	SentOwnerPhotos      map[string]struct{} `json:"sent_owner_photos"`
	AboutText            string              `json:"about_text"`
	HasExpressedInterest bool                `json:"has_expressed_interest"`
	LastPhotoID          string              `json:"last_photo_id"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// NewVisitorSession creates a session awaiting verification
func NewVisitorSession(visitorID, chatID int64, username string) *VisitorSession {
	now := time.Now()
	return &VisitorSession{
		VisitorID:       visitorID,
		ChatID:          chatID,
		Username:        username,
		State:           StateAwaitingVerification,
		SentOwnerPhotos: make(map[string]struct{}),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// HasVerified reports whether photoID was already accepted
func (s *VisitorSession) HasVerified(photoID string) bool {
	for _, id := range s.VerifiedPhotos {
		if id == photoID {
			return true
		}
	}
	return false
}

// AddVerified appends a verified photo and makes it the representative one.
// Returns false for duplicates.
func (s *VisitorSession) AddVerified(photoID string) bool {
	if s.HasVerified(photoID) {
		return false
	}
	s.VerifiedPhotos = append(s.VerifiedPhotos, photoID)
	s.LastPhotoID = photoID
	return true
}

// MarkSent records an owner photo as delivered to this visitor
func (s *VisitorSession) MarkSent(photoID string) {
	if s.SentOwnerPhotos == nil {
		s.SentOwnerPhotos = make(map[string]struct{})
	}
	s.SentOwnerPhotos[photoID] = struct{}{}
}

// WasSent reports whether an owner photo was already delivered
func (s *VisitorSession) WasSent(photoID string) bool {
	_, ok := s.SentOwnerPhotos[photoID]
	return ok
}

// OwnerState is the owner's position in the configuration dialogue
type OwnerState string

const (
	OwnerIdle                   OwnerState = "IDLE"
	OwnerSetPhoto               OwnerState = "SET_PHOTO"
	OwnerSetInterests           OwnerState = "SET_INTERESTS"
	OwnerSetLookingFor          OwnerState = "SET_LOOKING_FOR"
	OwnerSetAbout               OwnerState = "SET_ABOUT"
	OwnerConfirmClearPhotos     OwnerState = "CONFIRM_CLEAR_PHOTOS"
	OwnerConfirmClearInterests  OwnerState = "CONFIRM_CLEAR_INTERESTS"
	OwnerConfirmClearLookingFor OwnerState = "CONFIRM_CLEAR_LOOKING_FOR"
	OwnerConfirmClearAbout      OwnerState = "CONFIRM_CLEAR_ABOUT"
)
