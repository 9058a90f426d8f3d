package bot

import (
	"context"

	"photo-exchange-bot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Handler consumes one inbound chat message
type Handler interface {
	Handle(ctx context.Context, in services.Inbound) error
}

// Dispatcher routes updates to the owner or visitor flow by sender id
type Dispatcher struct {
	ownerID  int64
	owner    Handler
	visitors Handler
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(ownerID int64, owner, visitors Handler) *Dispatcher {
	return &Dispatcher{ownerID: ownerID, owner: owner, visitors: visitors}
}

// Dispatch handles one update. Updates without a usable message are dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, update tgbotapi.Update) {
	in, ok := ToInbound(update.Message)
	if !ok {
		return
	}

	h, role := d.visitors, "visitor"
	if in.SenderID == d.ownerID {
		h, role = d.owner, "owner"
	}

	if err := h.Handle(ctx, in); err != nil {
		log.Error().
			Err(err).
			Str("role", role).
			Int64("sender_id", in.SenderID).
			Int("update_id", update.UpdateID).
			Msg("Failed to handle update")
	}
}

// ToInbound extracts the fields the flows care about. The largest photo
// size is used for photos.
func ToInbound(msg *tgbotapi.Message) (services.Inbound, bool) {
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return services.Inbound{}, false
	}

	in := services.Inbound{
		SenderID: msg.From.ID,
		ChatID:   msg.Chat.ID,
		Username: msg.From.UserName,
	}

	switch {
	case msg.IsCommand():
		in.Command = msg.Command()
	case len(msg.Photo) > 0:
		in.PhotoID = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Text != "":
		in.Text = msg.Text
	default:
		return services.Inbound{}, false
	}

	return in, true
}
