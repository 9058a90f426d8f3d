package services

import (
	"context"
	"fmt"
	"sync"

	"photo-exchange-bot/internal/models"

	"github.com/rs/zerolog/log"
)

// OwnerService runs the owner's configuration dialogue
type OwnerService struct {
	mu        sync.Mutex
	state     models.OwnerState
	profile   *ProfileService
	messenger Messenger
	groupSize int
}

// NewOwnerService creates a new owner service in the IDLE state
func NewOwnerService(profile *ProfileService, messenger Messenger, groupSize int) *OwnerService {
	return &OwnerService{
		state:     models.OwnerIdle,
		profile:   profile,
		messenger: messenger,
		groupSize: groupSize,
	}
}

// State returns the current dialogue state
func (s *OwnerService) State() models.OwnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Handle processes one owner message
func (s *OwnerService) Handle(ctx context.Context, in Inbound) error {
	ev := ParseOwnerEvent(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	next, effects := NextOwnerState(s.state, ev)
	if next != s.state {
		log.Debug().Str("from", string(s.state)).Str("to", string(next)).Msg("Owner state changed")
	}
	s.state = next

	for _, eff := range effects {
		if err := s.apply(ctx, in.ChatID, eff); err != nil {
			return err
		}
	}
	return nil
}

func (s *OwnerService) apply(ctx context.Context, chatID int64, eff OwnerEffect) error {
	switch eff.Kind {
	case EffectShowMenu:
		s.reply(ctx, chatID, "Owner menu:", ownerKeyboard)

	case EffectPrompt:
		if eff.Target == TargetPhotos {
			s.reply(ctx, chatID, "Send one photo to add it to your profile.", removeKeyboard)
		} else {
			s.reply(ctx, chatID, fmt.Sprintf("Send the new %s text.", eff.Target.label()), removeKeyboard)
		}

	case EffectAddPhoto:
		if s.profile.AddPhoto(ctx, eff.Value) {
			s.reply(ctx, chatID, fmt.Sprintf("✅ Photo added! Total photos: %d", s.profile.PhotoCount()), nil)
		} else {
			s.reply(ctx, chatID, "This photo is already in your profile.", nil)
		}

	case EffectSetField:
		field, _ := eff.Target.Field()
		if err := s.profile.SetField(ctx, field, eff.Value); err != nil {
			return fmt.Errorf("failed to set owner field: %w", err)
		}
		s.reply(ctx, chatID, fmt.Sprintf("✅ Saved %s.", eff.Target.label()), nil)

	case EffectAskConfirm:
		s.reply(ctx, chatID, fmt.Sprintf("Are you sure you want to clear %s?", eff.Target.label()), confirmKeyboard)

	case EffectReprompt:
		s.reply(ctx, chatID, fmt.Sprintf("Please answer %s or %s.", LabelYes, LabelNo), confirmKeyboard)

	case EffectClear:
		if eff.Target == TargetPhotos {
			s.profile.ClearPhotos(ctx)
		} else {
			field, _ := eff.Target.Field()
			if err := s.profile.ClearField(ctx, field); err != nil {
				return fmt.Errorf("failed to clear owner field: %w", err)
			}
		}
		s.reply(ctx, chatID, fmt.Sprintf("🗑 Cleared %s.", eff.Target.label()), nil)

	case EffectCancelClear:
		s.reply(ctx, chatID, "Clearing cancelled.", nil)

	case EffectView:
		s.view(ctx, chatID, eff.Target)
	}
	return nil
}

func (s *OwnerService) view(ctx context.Context, chatID int64, target OwnerTarget) {
	if target == TargetPhotos {
		photos := s.profile.Photos()
		if len(photos) == 0 {
			s.reply(ctx, chatID, "You have no photos yet.", nil)
			return
		}
		s.reply(ctx, chatID, fmt.Sprintf("Your photos (%d):", len(photos)), nil)
		if err := SendPhotosInGroups(ctx, s.messenger, chatID, photos, s.groupSize, "Photo"); err != nil {
			log.Warn().Err(err).Msg("Failed to send owner photos to owner")
		}
		return
	}

	field, _ := target.Field()
	value := s.profile.Field(field)
	if value == "" {
		s.reply(ctx, chatID, fmt.Sprintf("No %s set.", target.label()), nil)
		return
	}
	s.reply(ctx, chatID, fmt.Sprintf("Current %s:\n%s", target.label(), value), nil)
}

func (s *OwnerService) reply(ctx context.Context, chatID int64, text string, kb *Keyboard) {
	if err := s.messenger.SendText(ctx, chatID, text, kb); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}
