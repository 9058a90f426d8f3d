package services

import (
	"context"

	"photo-exchange-bot/internal/models"
)

// Store is the durable storage contract. Every call is all-or-nothing.
type Store interface {
	GetOwnerProfile(ctx context.Context) (*models.OwnerProfile, error)
	SetOwnerField(ctx context.Context, field models.OwnerField, value string) error
	ClearOwnerField(ctx context.Context, field models.OwnerField) error
	AddOwnerPhoto(ctx context.Context, fileID string) (bool, error)
	ListOwnerPhotos(ctx context.Context) ([]string, error)
	ClearOwnerPhotos(ctx context.Context) error
	UpsertInterestRecord(ctx context.Context, rec *models.InterestRecord) error
	ListInterestRecords(ctx context.Context) ([]*models.InterestRecord, error)
}

// Keyboard describes the reply keyboard attached to a text message.
// A nil keyboard leaves whatever the chat currently shows.
type Keyboard struct {
	Rows    [][]string
	OneTime bool
	Remove  bool
}

// Messenger delivers messages to a chat
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, kb *Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, photoID, caption string) error
	// SendPhotoGroup sends up to the transport's batch cap as one album.
	// The caption is attached to the first photo.
	SendPhotoGroup(ctx context.Context, chatID int64, photoIDs []string, caption string) error
}

// PhotoFetcher downloads the bytes behind a photo id
type PhotoFetcher interface {
	Fetch(ctx context.Context, photoID string) ([]byte, error)
}

// FaceDetector reports whether an encoded image contains at least one face
type FaceDetector interface {
	HasFace(ctx context.Context, image []byte) (bool, error)
}

// SessionStore holds visitor sessions. Get returns nil, nil for unknown visitors.
type SessionStore interface {
	Get(ctx context.Context, visitorID int64) (*models.VisitorSession, error)
	Save(ctx context.Context, session *models.VisitorSession) error
}

// PhotoArchiver keeps a copy of verified visitor photos
type PhotoArchiver interface {
	Archive(ctx context.Context, visitorID int64, photoID string, data []byte) error
}

// InterestNotifier receives committed interest records in addition to the
// chat notification sent to the owner
type InterestNotifier interface {
	NotifyInterest(ctx context.Context, rec *models.InterestRecord) error
}

// Inbound is one message received from a chat participant
type Inbound struct {
	SenderID int64
	ChatID   int64
	Username string
	Text     string
	PhotoID  string
	Command  string
}

// Handle returns the visitor's display handle
func (in Inbound) Handle() string {
	if in.Username == "" {
		return noUsername
	}
	return in.Username
}

const noUsername = "no_name"

type nopArchiver struct{}

func (nopArchiver) Archive(context.Context, int64, string, []byte) error { return nil }
