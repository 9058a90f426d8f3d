package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"photo-exchange-bot/internal/models"
)

var errBoom = errors.New("boom")

type sentText struct {
	chatID int64
	text   string
	kb     *Keyboard
}

type sentPhoto struct {
	chatID  int64
	photoID string
	caption string
}

type sentGroup struct {
	chatID   int64
	photoIDs []string
	caption  string
}

// recordingMessenger keeps every delivery; chats listed in failChats reject everything
type recordingMessenger struct {
	mu         sync.Mutex
	texts      []sentText
	photos     []sentPhoto
	groups     []sentGroup
	failChats  map[int64]bool
	failGroups bool
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{failChats: map[int64]bool{}}
}

func (m *recordingMessenger) SendText(_ context.Context, chatID int64, text string, kb *Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failChats[chatID] {
		return errBoom
	}
	m.texts = append(m.texts, sentText{chatID, text, kb})
	return nil
}

func (m *recordingMessenger) SendPhoto(_ context.Context, chatID int64, photoID, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failChats[chatID] {
		return errBoom
	}
	m.photos = append(m.photos, sentPhoto{chatID, photoID, caption})
	return nil
}

func (m *recordingMessenger) SendPhotoGroup(_ context.Context, chatID int64, photoIDs []string, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failChats[chatID] || m.failGroups {
		return errBoom
	}
	m.groups = append(m.groups, sentGroup{chatID, append([]string(nil), photoIDs...), caption})
	return nil
}

func (m *recordingMessenger) textsTo(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, t := range m.texts {
		if t.chatID == chatID {
			out = append(out, t.text)
		}
	}
	return out
}

func (m *recordingMessenger) photosTo(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.photos {
		if p.chatID == chatID {
			out = append(out, p.photoID)
		}
	}
	return out
}

func (m *recordingMessenger) lastText(chatID int64) string {
	texts := m.textsTo(chatID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (m *recordingMessenger) sawText(chatID int64, substr string) bool {
	for _, t := range m.textsTo(chatID) {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

func (m *recordingMessenger) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts, m.photos, m.groups = nil, nil, nil
}

// memStore is an in-memory Store; fail makes every write return an error
type memStore struct {
	mu        sync.Mutex
	fields    map[models.OwnerField]string
	photos    []string
	interests map[int64]*models.InterestRecord
	fail      bool
}

func newMemStore() *memStore {
	return &memStore{
		fields:    map[models.OwnerField]string{},
		interests: map[int64]*models.InterestRecord{},
	}
}

func (s *memStore) GetOwnerProfile(context.Context) (*models.OwnerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.OwnerProfile{
		Interests:  s.fields[models.FieldInterests],
		LookingFor: s.fields[models.FieldLookingFor],
		About:      s.fields[models.FieldAbout],
	}, nil
}

func (s *memStore) SetOwnerField(_ context.Context, field models.OwnerField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errBoom
	}
	s.fields[field] = value
	return nil
}

func (s *memStore) ClearOwnerField(_ context.Context, field models.OwnerField) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errBoom
	}
	delete(s.fields, field)
	return nil
}

func (s *memStore) AddOwnerPhoto(_ context.Context, fileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return false, errBoom
	}
	for _, id := range s.photos {
		if id == fileID {
			return false, nil
		}
	}
	s.photos = append(s.photos, fileID)
	return true, nil
}

func (s *memStore) ListOwnerPhotos(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.photos...), nil
}

func (s *memStore) ClearOwnerPhotos(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errBoom
	}
	s.photos = nil
	return nil
}

func (s *memStore) UpsertInterestRecord(_ context.Context, rec *models.InterestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errBoom
	}
	c := *rec
	s.interests[rec.VisitorID] = &c
	return nil
}

func (s *memStore) ListInterestRecords(context.Context) ([]*models.InterestRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.InterestRecord
	for _, r := range s.interests {
		out = append(out, r)
	}
	return out, nil
}

// scriptedDetector answers from a per-photo table keyed by the fetched bytes
type scriptedDetector struct {
	mu      sync.Mutex
	noFace  map[string]bool
	failing map[string]bool
	calls   int
}

func newScriptedDetector() *scriptedDetector {
	return &scriptedDetector{noFace: map[string]bool{}, failing: map[string]bool{}}
}

func (d *scriptedDetector) HasFace(_ context.Context, data []byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	key := string(data)
	if d.failing[key] {
		return false, errBoom
	}
	return !d.noFace[key], nil
}

// echoFetcher returns the photo id as its content
type echoFetcher struct{}

func (echoFetcher) Fetch(_ context.Context, photoID string) ([]byte, error) {
	return []byte(photoID), nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	recs []*models.InterestRecord
	err  error
}

func (n *recordingNotifier) NotifyInterest(_ context.Context, rec *models.InterestRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recs = append(n.recs, rec)
	return n.err
}
