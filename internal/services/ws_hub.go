package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"photo-exchange-bot/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage is one event on the owner's live feed
type WSMessage struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// WSHub fans interest events out to connected owner clients
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register adds a connection and returns its id
func (h *WSHub) Register(conn *websocket.Conn) string {
	id := uuid.New().String()

	h.mu.Lock()
	h.connections[id] = conn
	h.mu.Unlock()

	log.Info().Str("conn_id", id).Msg("WebSocket connection registered")
	return id
}

// Unregister closes and removes a connection
func (h *WSHub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[id]; exists {
		conn.Close()
		delete(h.connections, id)
		log.Info().Str("conn_id", id).Msg("WebSocket connection unregistered")
	}
}

// Count returns the number of connected clients
func (h *WSHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Broadcast sends a message to every connection. Connections that fail
// to accept the write are dropped.
func (h *WSHub) Broadcast(message WSMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mu.RLock()
	conns := make(map[string]*websocket.Conn, len(h.connections))
	for id, c := range h.connections {
		conns[id] = c
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	var failed []string
	for id, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warn().Err(err).Str("conn_id", id).Msg("Failed to write to WebSocket")
			failed = append(failed, id)
		}
	}
	h.writeMu.Unlock()

	for _, id := range failed {
		h.Unregister(id)
	}

	return nil
}

// SendTo sends a message to one connection
func (h *WSHub) SendTo(id string, message WSMessage) error {
	h.mu.RLock()
	conn, exists := h.connections[id]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection %s is not registered", id)
	}
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	h.writeMu.Unlock()
	if err != nil {
		h.Unregister(id)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// NotifyInterest publishes an interest record on the live feed
func (h *WSHub) NotifyInterest(_ context.Context, rec *models.InterestRecord) error {
	if h.Count() == 0 {
		return nil
	}
	return h.Broadcast(WSMessage{
		Type:      "interest",
		Timestamp: rec.CreatedAt.UnixMilli(),
		Data:      rec,
	})
}

// Close drops every connection
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.connections {
		conn.Close()
		delete(h.connections, id)
	}
}
