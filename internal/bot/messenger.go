package bot

import (
	"context"
	"fmt"

	"photo-exchange-bot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMediaGroup is the largest album Telegram accepts
const MaxMediaGroup = 10

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
}

// TelegramMessenger delivers bot replies through the Bot API
type TelegramMessenger struct {
	api sender
}

// NewTelegramMessenger creates a new messenger
func NewTelegramMessenger(api *tgbotapi.BotAPI) *TelegramMessenger {
	return &TelegramMessenger{api: api}
}

// SendText sends a text message with an optional reply keyboard
func (m *TelegramMessenger) SendText(ctx context.Context, chatID int64, text string, kb *services.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if markup := replyMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendPhoto sends one photo by file id
func (m *TelegramMessenger) SendPhoto(ctx context.Context, chatID int64, photoID, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(photoID))
	photo.Caption = caption

	if _, err := m.api.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

// SendPhotoGroup sends photos as one album, caption on the first item
func (m *TelegramMessenger) SendPhotoGroup(ctx context.Context, chatID int64, photoIDs []string, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(photoIDs) > MaxMediaGroup {
		return fmt.Errorf("media group of %d exceeds %d", len(photoIDs), MaxMediaGroup)
	}

	media := make([]interface{}, 0, len(photoIDs))
	for i, id := range photoIDs {
		item := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(id))
		if i == 0 {
			item.Caption = caption
		}
		media = append(media, item)
	}

	if _, err := m.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
		return fmt.Errorf("failed to send media group: %w", err)
	}
	return nil
}

func replyMarkup(kb *services.Keyboard) interface{} {
	switch {
	case kb == nil:
		return nil
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(true)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}

	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.OneTimeKeyboard = kb.OneTime
	return markup
}
