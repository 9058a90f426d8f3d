package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
	"unicode/utf8"

	"photo-exchange-bot/internal/models"

	"github.com/rs/zerolog/log"
)

// DrawStatus is the outcome of picking an owner photo for a visitor
type DrawStatus int

const (
	DrawSelected DrawStatus = iota
	DrawNoOwnerPhotos
	DrawExhausted
	DrawDeliveryFailed
)

// DrawResult carries the selected photo when Status is DrawSelected
type DrawResult struct {
	PhotoID string
	Status  DrawStatus
}

// InterestResult is the outcome of the interest action
type InterestResult int

const (
	InterestSent InterestResult = iota
	InterestNotInMenu
	InterestAboutTooShort
	InterestAlreadySent
	InterestNoPhoto
)

// ExchangeConfig holds the exchange limits
type ExchangeConfig struct {
	OwnerChatID    int64
	MinAboutLength int
	MediaGroupSize int
}

// ExchangeService hands owner photos to visitors and forwards interest
type ExchangeService struct {
	cfg       ExchangeConfig
	profile   *ProfileService
	store     Store
	messenger Messenger
	notifiers []InterestNotifier
	intN      func(n int) int

	// visitors whose interest was committed, kept even if their session
	// could not be saved afterwards
	mu        sync.Mutex
	expressed map[int64]struct{}
}

// NewExchangeService creates a new exchange service
func NewExchangeService(cfg ExchangeConfig, profile *ProfileService, store Store, messenger Messenger, notifiers ...InterestNotifier) *ExchangeService {
	return &ExchangeService{
		cfg:       cfg,
		profile:   profile,
		store:     store,
		messenger: messenger,
		notifiers: notifiers,
		intN:      rand.IntN,
		expressed: make(map[int64]struct{}),
	}
}

// WithRand replaces the random source, for deterministic tests
func (s *ExchangeService) WithRand(r *rand.Rand) *ExchangeService {
	s.intN = r.IntN
	return s
}

// Draw picks uniformly among owner photos this session has not received
func (s *ExchangeService) Draw(ownerPhotos []string, session *models.VisitorSession) DrawResult {
	if len(ownerPhotos) == 0 {
		return DrawResult{Status: DrawNoOwnerPhotos}
	}

	remaining := make([]string, 0, len(ownerPhotos))
	for _, id := range ownerPhotos {
		if !session.WasSent(id) {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return DrawResult{Status: DrawExhausted}
	}

	return DrawResult{PhotoID: remaining[s.intN(len(remaining))], Status: DrawSelected}
}

// Distribute draws one owner photo, sends it and records it on the session.
// A photo is only recorded once it was delivered.
func (s *ExchangeService) Distribute(ctx context.Context, session *models.VisitorSession) DrawResult {
	result := s.Draw(s.profile.Photos(), session)

	switch result.Status {
	case DrawNoOwnerPhotos:
		log.Warn().Int64("visitor_id", session.VisitorID).Msg("No owner photos to exchange")
		s.reply(ctx, session.ChatID, "The owner has no photos to exchange yet.")
		return result
	case DrawExhausted:
		log.Info().Int64("visitor_id", session.VisitorID).Msg("All owner photos already sent to visitor")
		s.reply(ctx, session.ChatID, "Sorry, you have already received all of the owner's photos.")
		return result
	}

	if err := s.messenger.SendPhoto(ctx, session.ChatID, result.PhotoID, "Here is the owner's photo in exchange for yours:"); err != nil {
		log.Error().Err(err).Int64("visitor_id", session.VisitorID).Msg("Failed to send owner photo")
		s.reply(ctx, session.ChatID, "Failed to send the owner's photo.")
		return DrawResult{Status: DrawDeliveryFailed}
	}

	session.MarkSent(result.PhotoID)
	log.Info().
		Int64("visitor_id", session.VisitorID).
		Str("photo_id", shortID(result.PhotoID)).
		Msg("Owner photo exchanged")
	return result
}

// AboutReady reports whether the session's about text unlocks the interest action
func (s *ExchangeService) AboutReady(session *models.VisitorSession) bool {
	return utf8.RuneCountInString(session.AboutText) >= s.cfg.MinAboutLength
}

// ExpressInterest runs the one-shot interest action. The record and the
// flag are committed before the owner is notified and are never rolled back.
func (s *ExchangeService) ExpressInterest(ctx context.Context, session *models.VisitorSession) InterestResult {
	switch {
	case session.State != models.StateInMainMenu:
		s.reply(ctx, session.ChatID, "Please finish the verification steps first.")
		return InterestNotInMenu
	case !s.AboutReady(session):
		s.reply(ctx, session.ChatID, fmt.Sprintf(
			"Fill in 'About me' first (at least %d characters). It is required to express interest.", s.cfg.MinAboutLength))
		return InterestAboutTooShort
	case session.HasExpressedInterest || s.wasExpressed(session.VisitorID):
		session.HasExpressedInterest = true
		log.Info().Int64("visitor_id", session.VisitorID).Msg("Visitor repeated interest")
		s.reply(ctx, session.ChatID, "You have already expressed interest. It can only be sent once.")
		return InterestAlreadySent
	case session.LastPhotoID == "":
		log.Error().Int64("visitor_id", session.VisitorID).Msg("Interest without a verified photo")
		s.reply(ctx, session.ChatID, "Error: no verified photo found.")
		return InterestNoPhoto
	}

	handle := session.Username
	if handle == "" {
		handle = noUsername
	}

	rec := &models.InterestRecord{
		VisitorID: session.VisitorID,
		Username:  handle,
		PhotoID:   session.LastPhotoID,
		AboutText: session.AboutText,
		CreatedAt: time.Now(),
	}
	if err := s.store.UpsertInterestRecord(ctx, rec); err != nil {
		log.Warn().Err(err).Int64("visitor_id", session.VisitorID).Msg("Failed to persist interest record")
	}
	session.HasExpressedInterest = true
	s.markExpressed(session.VisitorID)

	log.Info().Int64("visitor_id", session.VisitorID).Str("username", handle).Msg("Visitor expressed interest")
	s.reply(ctx, session.ChatID, "✅ Your interest has been sent to the owner!")

	if err := s.notifyOwner(ctx, session, handle); err != nil {
		log.Error().Err(err).Int64("owner_id", s.cfg.OwnerChatID).Msg("Failed to deliver interest to owner")
		s.reply(ctx, session.ChatID, "⚠️ There was a problem delivering your interest. Please try again later.")
	}

	for _, n := range s.notifiers {
		if err := n.NotifyInterest(ctx, rec); err != nil {
			log.Warn().Err(err).Int64("visitor_id", session.VisitorID).Msg("Interest notifier failed")
		}
	}

	return InterestSent
}

func (s *ExchangeService) wasExpressed(visitorID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.expressed[visitorID]
	return ok
}

func (s *ExchangeService) markExpressed(visitorID int64) {
	s.mu.Lock()
	s.expressed[visitorID] = struct{}{}
	s.mu.Unlock()
}

func (s *ExchangeService) notifyOwner(ctx context.Context, session *models.VisitorSession, handle string) error {
	text := fmt.Sprintf("💌 New interest!\nUser: @%s (ID: %d)\nAbout:\n%s", handle, session.VisitorID, session.AboutText)
	if err := s.messenger.SendText(ctx, s.cfg.OwnerChatID, text, nil); err != nil {
		return fmt.Errorf("failed to send interest text: %w", err)
	}

	if len(session.VerifiedPhotos) == 0 {
		return s.messenger.SendPhoto(ctx, s.cfg.OwnerChatID, session.LastPhotoID, fmt.Sprintf("Photo from @%s (fallback)", handle))
	}

	s.reply(ctx, session.ChatID, "Sending your photos to the owner...")
	return SendPhotosInGroups(ctx, s.messenger, s.cfg.OwnerChatID, session.VerifiedPhotos, s.cfg.MediaGroupSize, "Photo from @"+handle)
}

// reply sends a plain text message and only logs delivery failures
func (s *ExchangeService) reply(ctx context.Context, chatID int64, text string) {
	if err := s.messenger.SendText(ctx, chatID, text, nil); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}
