package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"photo-exchange-bot/internal/models"

	"github.com/rs/zerolog/log"
)

// VisitorConfig holds the visitor flow limits
type VisitorConfig struct {
	RequiredPhotos int
	MinAboutLength int
	MediaGroupSize int
}

// VisitorService drives every visitor through verification, the main menu
// and the about text prompt
type VisitorService struct {
	cfg       VisitorConfig
	profile   *ProfileService
	exchange  *ExchangeService
	sessions  SessionStore
	messenger Messenger
	fetcher   PhotoFetcher
	detector  FaceDetector
	archiver  PhotoArchiver
	locks     keyedMutex
}

// NewVisitorService creates a new visitor service. archiver may be nil.
func NewVisitorService(
	cfg VisitorConfig,
	profile *ProfileService,
	exchange *ExchangeService,
	sessions SessionStore,
	messenger Messenger,
	fetcher PhotoFetcher,
	detector FaceDetector,
	archiver PhotoArchiver,
) *VisitorService {
	if archiver == nil {
		archiver = nopArchiver{}
	}
	return &VisitorService{
		cfg:       cfg,
		profile:   profile,
		exchange:  exchange,
		sessions:  sessions,
		messenger: messenger,
		fetcher:   fetcher,
		detector:  detector,
		archiver:  archiver,
	}
}

// Handle processes one inbound visitor message to completion.
// Messages from the same visitor are serialised.
func (s *VisitorService) Handle(ctx context.Context, in Inbound) error {
	unlock := s.locks.Lock(in.SenderID)
	defer unlock()

	if in.Command == "start" {
		return s.start(ctx, in)
	}

	session, err := s.sessions.Get(ctx, in.SenderID)
	if err != nil {
		s.reply(ctx, in.ChatID, "❌ Something went wrong. Please try again later.", nil)
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		session = models.NewVisitorSession(in.SenderID, in.ChatID, in.Handle())
	}
	session.ChatID = in.ChatID
	session.Username = in.Handle()

	switch session.State {
	case models.StateAwaitingVerification:
		s.handleVerification(ctx, session, in)
	case models.StateInMainMenu:
		s.handleMenu(ctx, session, in)
	case models.StateAwaitingAboutText:
		s.handleAboutText(ctx, session, in)
	default:
		log.Warn().Str("state", string(session.State)).Int64("visitor_id", in.SenderID).Msg("Unknown visitor state, restarting")
		session.State = models.StateAwaitingVerification
	}

	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		if session.HasExpressedInterest {
			log.Warn().Err(err).Int64("visitor_id", session.VisitorID).Msg("Session not saved after interest, keeping it in memory")
		}
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Session returns the stored session for a visitor, or nil
func (s *VisitorService) Session(ctx context.Context, visitorID int64) (*models.VisitorSession, error) {
	return s.sessions.Get(ctx, visitorID)
}

func (s *VisitorService) start(ctx context.Context, in Inbound) error {
	if s.profile.PhotoCount() == 0 {
		s.reply(ctx, in.ChatID, fmt.Sprintf("Hi, %s! The owner hasn't added any photos yet. Please try again later.", in.Handle()), nil)
		return nil
	}

	s.reply(ctx, in.ChatID, fmt.Sprintf(
		"Hi, %s! Send me %d photos and I'll check that there is a face on them. "+
			"For every verified photo you get one of the owner's photos in return. "+
			"You need exactly %d photos to continue.",
		in.Handle(), s.cfg.RequiredPhotos, s.cfg.RequiredPhotos), removeKeyboard)

	session := models.NewVisitorSession(in.SenderID, in.ChatID, in.Handle())
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	log.Info().Int64("visitor_id", in.SenderID).Str("username", in.Handle()).Msg("Visitor started")
	return nil
}

func (s *VisitorService) handleVerification(ctx context.Context, session *models.VisitorSession, in Inbound) {
	if in.PhotoID == "" {
		remaining := s.cfg.RequiredPhotos - len(session.VerifiedPhotos)
		s.reply(ctx, in.ChatID, fmt.Sprintf("Please send photos to continue: %d more needed.", remaining), nil)
		return
	}

	if s.profile.PhotoCount() == 0 {
		s.reply(ctx, in.ChatID, "Sorry, the owner has no photos at the moment. Verification is unavailable.", nil)
		return
	}

	if session.HasVerified(in.PhotoID) {
		s.reply(ctx, in.ChatID, "This photo was already uploaded. Please send a different one.", nil)
		return
	}

	data, err := s.fetcher.Fetch(ctx, in.PhotoID)
	if err == nil {
		var hasFace bool
		hasFace, err = s.detector.HasFace(ctx, data)
		if err == nil && !hasFace {
			log.Info().Int64("visitor_id", session.VisitorID).Msg("Face check failed")
			s.reply(ctx, in.ChatID, "❌ No human face detected. Maybe this is not a photo of a person. Please try another one.", nil)
			return
		}
	}
	if err != nil {
		log.Error().Err(err).Int64("visitor_id", session.VisitorID).Msg("Failed to process visitor photo")
		s.reply(ctx, in.ChatID, "❌ Something went wrong while processing the photo. Please try another image.", nil)
		return
	}

	session.AddVerified(in.PhotoID)
	log.Info().
		Int64("visitor_id", session.VisitorID).
		Int("verified", len(session.VerifiedPhotos)).
		Msg("Face check passed")

	if err := s.archiver.Archive(ctx, session.VisitorID, in.PhotoID, data); err != nil {
		log.Warn().Err(err).Int64("visitor_id", session.VisitorID).Msg("Failed to archive visitor photo")
	}

	s.reply(ctx, in.ChatID, fmt.Sprintf("✅ Photo accepted! (%d/%d)", len(session.VerifiedPhotos), s.cfg.RequiredPhotos), nil)
	s.exchange.Distribute(ctx, session)

	if len(session.VerifiedPhotos) == s.cfg.RequiredPhotos {
		session.State = models.StateInMainMenu
		log.Info().Int64("visitor_id", session.VisitorID).Msg("Visitor verified, menu unlocked")
		s.reply(ctx, in.ChatID, fmt.Sprintf(
			"Great! You uploaded %d photos and received the owner's photos in return.\nThe menu is now available.",
			s.cfg.RequiredPhotos), nil)
		s.showMenu(ctx, session)
		return
	}

	s.reply(ctx, in.ChatID, fmt.Sprintf("Send %d more photo(s).", s.cfg.RequiredPhotos-len(session.VerifiedPhotos)), nil)
}

func (s *VisitorService) handleMenu(ctx context.Context, session *models.VisitorSession, in Inbound) {
	if in.PhotoID != "" {
		s.reply(ctx, in.ChatID, "Please use the menu buttons.", nil)
		return
	}

	switch ParseVisitorAction(in.Text) {
	case ActionViewPhotos:
		photos := s.profile.Photos()
		if len(photos) == 0 {
			s.reply(ctx, in.ChatID, "The owner has no photos yet.", nil)
			return
		}
		s.reply(ctx, in.ChatID, fmt.Sprintf("Owner's photos (%d):", len(photos)), nil)
		if err := SendPhotosInGroups(ctx, s.messenger, in.ChatID, photos, s.cfg.MediaGroupSize, "Owner's photo"); err != nil {
			log.Warn().Err(err).Int64("visitor_id", session.VisitorID).Msg("Failed to send owner photos")
		}
	case ActionViewInterests:
		s.sendField(ctx, in.ChatID, models.FieldInterests,
			"The owner hasn't shared interests yet.", "Owner's interests:\n%s")
	case ActionViewLookingFor:
		s.sendField(ctx, in.ChatID, models.FieldLookingFor,
			"The owner hasn't said who they are looking for yet.", "The owner is looking for:\n%s")
	case ActionViewAboutMe:
		if session.AboutText == "" {
			s.reply(ctx, in.ChatID, fmt.Sprintf(
				"You haven't written anything about yourself yet. Press %q to add it.", LabelEditAboutMe), nil)
			return
		}
		s.reply(ctx, in.ChatID, "Your 'About me':\n"+session.AboutText, nil)
	case ActionEditAboutMe:
		if session.AboutText != "" {
			s.reply(ctx, in.ChatID, fmt.Sprintf(
				"Your current 'About me':\n%s\nSend a new text (at least %d characters) to replace it.",
				session.AboutText, s.cfg.MinAboutLength), removeKeyboard)
		} else {
			s.reply(ctx, in.ChatID, fmt.Sprintf(
				"Send a text about yourself (at least %d characters).", s.cfg.MinAboutLength), removeKeyboard)
		}
		session.State = models.StateAwaitingAboutText
	case ActionExpressInterest:
		s.exchange.ExpressInterest(ctx, session)
	default:
		s.reply(ctx, in.ChatID, "Please use the menu buttons.", nil)
	}
}

func (s *VisitorService) handleAboutText(ctx context.Context, session *models.VisitorSession, in Inbound) {
	if in.PhotoID != "" || in.Text == "" {
		s.reply(ctx, in.ChatID, fmt.Sprintf(
			"Please send text about yourself (at least %d characters).", s.cfg.MinAboutLength), nil)
		return
	}

	text := strings.TrimSpace(in.Text)
	if utf8.RuneCountInString(text) < s.cfg.MinAboutLength {
		s.reply(ctx, in.ChatID, fmt.Sprintf(
			"The text is too short. Please write at least %d characters.", s.cfg.MinAboutLength), nil)
		return
	}

	session.AboutText = text
	if about := s.profile.Field(models.FieldAbout); about != "" {
		s.reply(ctx, in.ChatID, "The owner's 'about':\n"+about, nil)
	} else {
		s.reply(ctx, in.ChatID, "The owner hasn't added an 'about' text yet.", nil)
	}

	session.State = models.StateInMainMenu
	log.Info().Int64("visitor_id", session.VisitorID).Msg("Visitor about text updated")
	s.reply(ctx, in.ChatID, "✅ 'About me' updated!", nil)
	s.showMenu(ctx, session)
}

func (s *VisitorService) sendField(ctx context.Context, chatID int64, field models.OwnerField, empty, format string) {
	value := s.profile.Field(field)
	if value == "" {
		s.reply(ctx, chatID, empty, nil)
		return
	}
	s.reply(ctx, chatID, fmt.Sprintf(format, value), nil)
}

func (s *VisitorService) showMenu(ctx context.Context, session *models.VisitorSession) {
	s.reply(ctx, session.ChatID, "Choose an action:", visitorKeyboard(s.exchange.AboutReady(session)))
}

func (s *VisitorService) reply(ctx context.Context, chatID int64, text string, kb *Keyboard) {
	if err := s.messenger.SendText(ctx, chatID, text, kb); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// keyedMutex hands out one mutex per visitor. Entries are dropped once no
// goroutine holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key int64) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*refMutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
