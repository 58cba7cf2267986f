package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"tourzen-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is a booking event pushed to a connected client
type Event struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Booking   *models.Booking `json:"booking,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// NotifyHub manages WebSocket connections and pushes booking events to the
// users they concern. Delivery is best-effort: an offline user simply misses
// the event and sees the change on their next list refresh.
type NotifyHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewNotifyHub creates a new notification hub
func NewNotifyHub() *NotifyHub {
	return &NotifyHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a WebSocket connection for a user
func (h *NotifyHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A reconnect replaces the previous connection.
	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's WebSocket connection
func (h *NotifyHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[userID]; ok {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks whether a user has a live connection
func (h *NotifyHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// SendToUser sends an event to a specific user
func (h *NotifyHub) SendToUser(userID string, event Event) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send event: %w", err)
	}

	return nil
}

// BookingCreated notifies the guide that a tourist booked one of their
// packages.
func (h *NotifyHub) BookingCreated(guideID string, booking models.Booking) {
	if !h.IsOnline(guideID) {
		return
	}
	event := Event{
		Type:      "booking_created",
		Timestamp: time.Now().UnixMilli(),
		Booking:   &booking,
	}
	if err := h.SendToUser(guideID, event); err != nil {
		log.Error().
			Err(err).
			Str("guide_id", guideID).
			Str("booking_id", booking.ID).
			Msg("Failed to notify guide about new booking")
	}
}

// BookingConfirmed notifies the booker that the guide confirmed their
// booking.
func (h *NotifyHub) BookingConfirmed(bookerID string, booking models.Booking) {
	if !h.IsOnline(bookerID) {
		return
	}
	event := Event{
		Type:      "booking_confirmed",
		Timestamp: time.Now().UnixMilli(),
		Booking:   &booking,
	}
	if err := h.SendToUser(bookerID, event); err != nil {
		log.Error().
			Err(err).
			Str("booker_id", bookerID).
			Str("booking_id", booking.ID).
			Msg("Failed to notify booker about confirmation")
	}
}
