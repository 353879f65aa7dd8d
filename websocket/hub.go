package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types pushed to connected ambassadors
const (
	NotificationTypeWithdrawalDecision = "withdrawal_decision"
	NotificationTypeReferralBonus      = "referral_bonus"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
}

// Hub maintains the set of active clients keyed by ambassador id
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.UserID != primitive.NilObjectID {
				h.clients[client.UserID] = client
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.clients[client.UserID]; ok && existing == client {
				delete(h.clients, client.UserID)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends a message to a specific connected ambassador
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// NotifyWithdrawalDecision pushes a withdrawal decision to the ambassador, if
// connected. Not being connected is not an error worth surfacing.
func (h *Hub) NotifyWithdrawalDecision(ambassadorID primitive.ObjectID, withdrawal interface{}) error {
	notification := Notification{
		Type:    NotificationTypeWithdrawalDecision,
		Message: "Your withdrawal request has been decided",
		Data:    withdrawal,
	}
	return h.SendToUser(ambassadorID, notification)
}
