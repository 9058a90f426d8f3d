package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"photo-exchange-bot/internal/httputil"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateDispatcher handles one decoded Telegram update
type UpdateDispatcher interface {
	Dispatch(ctx context.Context, update tgbotapi.Update)
}

// WebhookHandler receives Telegram updates in webhook mode
type WebhookHandler struct {
	secret     string
	dispatcher UpdateDispatcher
}

// NewWebhookHandler creates a new webhook handler. An empty secret disables
// the header check.
func NewWebhookHandler(secret string, dispatcher UpdateDispatcher) *WebhookHandler {
	return &WebhookHandler{secret: secret, dispatcher: dispatcher}
}

// HandleUpdate handles POST /telegram/webhook
func (h *WebhookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			log.Warn().Str("remote", r.RemoteAddr).Msg("Webhook call with bad secret")
			httputil.Error(w, "invalid secret token", http.StatusUnauthorized)
			return
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		httputil.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// the update is processed to completion even if Telegram hangs up
	h.dispatcher.Dispatch(context.WithoutCancel(r.Context()), update)

	w.WriteHeader(http.StatusOK)
}
