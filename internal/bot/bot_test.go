package bot

import (
	"context"
	"errors"
	"testing"

	"photo-exchange-bot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	got []services.Inbound
	err error
}

func (h *recordingHandler) Handle(_ context.Context, in services.Inbound) error {
	h.got = append(h.got, in)
	return h.err
}

func message(fromID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: fromID, UserName: "alice"},
		Chat: &tgbotapi.Chat{ID: fromID * 10},
		Text: text,
	}
}

func TestToInbound(t *testing.T) {
	t.Run("text message", func(t *testing.T) {
		in, ok := ToInbound(message(1, "hello"))
		require.True(t, ok)
		assert.Equal(t, services.Inbound{SenderID: 1, ChatID: 10, Username: "alice", Text: "hello"}, in)
	})

	t.Run("photo picks the largest size", func(t *testing.T) {
		msg := message(1, "")
		msg.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}

		in, ok := ToInbound(msg)
		require.True(t, ok)
		assert.Equal(t, "large", in.PhotoID)
		assert.Empty(t, in.Text)
	})

	t.Run("command", func(t *testing.T) {
		msg := message(1, "/start")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}

		in, ok := ToInbound(msg)
		require.True(t, ok)
		assert.Equal(t, "start", in.Command)
	})

	t.Run("unusable updates are dropped", func(t *testing.T) {
		_, ok := ToInbound(nil)
		assert.False(t, ok)

		_, ok = ToInbound(message(1, ""))
		assert.False(t, ok)
	})
}

func TestDispatch(t *testing.T) {
	owner := &recordingHandler{}
	visitors := &recordingHandler{err: errors.New("ignored")}
	d := NewDispatcher(99, owner, visitors)

	d.Dispatch(context.Background(), tgbotapi.Update{Message: message(99, "Main menu")})
	d.Dispatch(context.Background(), tgbotapi.Update{Message: message(5, "View photos")})
	d.Dispatch(context.Background(), tgbotapi.Update{})

	require.Len(t, owner.got, 1)
	assert.Equal(t, int64(99), owner.got[0].SenderID)
	require.Len(t, visitors.got, 1)
	assert.Equal(t, int64(5), visitors.got[0].SenderID)
}

type fakeSender struct {
	sent   []tgbotapi.Chattable
	groups []tgbotapi.MediaGroupConfig
	err    error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func (f *fakeSender) SendMediaGroup(cfg tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	f.groups = append(f.groups, cfg)
	return nil, f.err
}

func TestTelegramMessenger(t *testing.T) {
	ctx := context.Background()

	t.Run("text with keyboard", func(t *testing.T) {
		fs := &fakeSender{}
		m := &TelegramMessenger{api: fs}

		kb := &services.Keyboard{Rows: [][]string{{"Yes", "No"}}, OneTime: true}
		require.NoError(t, m.SendText(ctx, 1, "sure?", kb))

		require.Len(t, fs.sent, 1)
		msg := fs.sent[0].(tgbotapi.MessageConfig)
		assert.Equal(t, "sure?", msg.Text)
		markup := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
		assert.True(t, markup.OneTimeKeyboard)
		require.Len(t, markup.Keyboard, 1)
		assert.Equal(t, "No", markup.Keyboard[0][1].Text)
	})

	t.Run("remove keyboard", func(t *testing.T) {
		fs := &fakeSender{}
		m := &TelegramMessenger{api: fs}

		require.NoError(t, m.SendText(ctx, 1, "bye", &services.Keyboard{Remove: true}))
		msg := fs.sent[0].(tgbotapi.MessageConfig)
		assert.IsType(t, tgbotapi.ReplyKeyboardRemove{}, msg.ReplyMarkup)
	})

	t.Run("album caption goes on the first photo", func(t *testing.T) {
		fs := &fakeSender{}
		m := &TelegramMessenger{api: fs}

		require.NoError(t, m.SendPhotoGroup(ctx, 1, []string{"a", "b"}, "Photo #1"))
		require.Len(t, fs.groups, 1)
		require.Len(t, fs.groups[0].Media, 2)
		assert.Equal(t, "Photo #1", fs.groups[0].Media[0].(tgbotapi.InputMediaPhoto).Caption)
		assert.Empty(t, fs.groups[0].Media[1].(tgbotapi.InputMediaPhoto).Caption)
	})

	t.Run("oversized album is refused", func(t *testing.T) {
		m := &TelegramMessenger{api: &fakeSender{}}
		ids := make([]string, MaxMediaGroup+1)
		assert.Error(t, m.SendPhotoGroup(ctx, 1, ids, ""))
	})

	t.Run("send error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		m := &TelegramMessenger{api: &fakeSender{err: boom}}
		assert.ErrorIs(t, m.SendPhoto(ctx, 1, "a", ""), boom)
	})
}
