package notification

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"innkeeper/internal/domain"
)

// Event is what the front-desk board receives over the socket.
type Event struct {
	Kind          string `json:"kind"`
	BookingID     int64  `json:"bookingId,omitempty"`
	BookingNumber string `json:"bookingNumber,omitempty"`
	RoomID        int64  `json:"roomId,omitempty"`
	Status        string `json:"status"`
	At            string `json:"at"`
}

// Hub fans lifecycle events out to every connected front-desk client.
type Hub struct {
	connections map[int64]*websocket.Conn
	mutex       sync.RWMutex
	clock       domain.Clock
}

func NewHub(clock domain.Clock) *Hub {
	if clock == nil {
		clock = time.Now
	}
	return &Hub{
		connections: make(map[int64]*websocket.Conn),
		clock:       clock,
	}
}

func (h *Hub) Register(staffID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[staffID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.connections[staffID] = conn
}

func (h *Hub) Unregister(staffID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[staffID]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, staffID)
	}
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

// Broadcast delivers the event to every connection, dropping the ones
// that fail to keep a dead client from wedging the board.
func (h *Hub) Broadcast(event Event) {
	h.mutex.RLock()
	targets := make(map[int64]*websocket.Conn, len(h.connections))
	for staffID, conn := range h.connections {
		targets[staffID] = conn
	}
	h.mutex.RUnlock()

	for staffID, conn := range targets {
		if conn == nil {
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			h.Unregister(staffID)
		}
	}
}

func (h *Hub) NotifyBookingStatus(bookingID int64, bookingNumber string, status domain.BookingStatus) {
	h.Broadcast(Event{
		Kind:          "booking_status",
		BookingID:     bookingID,
		BookingNumber: bookingNumber,
		Status:        string(status),
		At:            h.clock().UTC().Format(time.RFC3339),
	})
}

func (h *Hub) NotifyRoomStatus(roomID int64, status domain.RoomStatus) {
	h.Broadcast(Event{
		Kind:   "room_status",
		RoomID: roomID,
		Status: string(status),
		At:     h.clock().UTC().Format(time.RFC3339),
	})
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for staffID, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, staffID)
	}
}
