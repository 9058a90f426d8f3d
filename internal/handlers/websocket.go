package handlers

import (
	"net/http"

	"photo-exchange-bot/internal/httputil"
	"photo-exchange-bot/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // token query parameter is the access check
	},
}

// TokenValidator checks owner bearer tokens
type TokenValidator interface {
	ValidateJWT(token string) (int64, error)
}

// WebSocketHandler streams interest events to the owner
type WebSocketHandler struct {
	hub    *services.WSHub
	tokens TokenValidator
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, tokens TokenValidator) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tokens: tokens}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.Error(w, "token required", http.StatusUnauthorized)
		return
	}

	ownerID, err := h.tokens.ValidateJWT(token)
	if err != nil {
		httputil.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	id := h.hub.Register(conn)
	defer h.hub.Unregister(id)

	if err := h.hub.SendTo(id, services.WSMessage{Type: "hello", Message: "subscribed to interest events"}); err != nil {
		log.Error().Err(err).Str("conn_id", id).Msg("Failed to send hello message")
		return
	}

	log.Info().Int64("owner_id", ownerID).Str("conn_id", id).Msg("WebSocket connection established")

	// the feed is one-way; reads only detect disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("conn_id", id).Msg("WebSocket error")
			}
			return
		}
	}
}
