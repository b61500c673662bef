// Package ws pushes order events to connected dashboard clients.
package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// paymentUpdatedPayload is the body of an order.payment_updated event.
type paymentUpdatedPayload struct {
	OrderID   string    `json:"orderId"`
	Paid      bool      `json:"paid"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered dashboard clients
	clients map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan Event

	// Mutex for thread-safe client set access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, exists := h.clients[client]; exists {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(event)
			if err != nil {
				log.Printf("ERROR: marshal ws event: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full - disconnect it
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastPaymentUpdate pushes an order.payment_updated event to every
// connected dashboard.
func (h *Hub) BroadcastPaymentUpdate(orderID string, paid bool, updatedAt time.Time) {
	payload, err := json.Marshal(paymentUpdatedPayload{
		OrderID:   orderID,
		Paid:      paid,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		log.Printf("ERROR: marshal payment update payload: %v", err)
		return
	}
	h.broadcast <- Event{Type: "order.payment_updated", Payload: payload}
}
