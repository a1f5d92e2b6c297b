package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/nats-io/nats.go"
)

// NATS subjects the collector publishes detection events on.
const (
	SubjectCrossing = "events.crossing"
	SubjectWaiting  = "events.waiting"
)

// EventMessage is the envelope sent to websocket clients.
type EventMessage struct {
	Type string          `json:"type"` // crossing, waiting, pong, error
	Data json.RawMessage `json:"data,omitempty"`
}

// EventHub fans detection events from NATS out to websocket clients. Every
// connected client receives every event; there is no per-subject
// subscription model because the event volume is a handful per day.
type EventHub struct {
	natsConn *nats.Conn

	clients   map[*EventClient]bool
	clientsMu sync.RWMutex

	register   chan *EventClient
	unregister chan *EventClient

	subs []*nats.Subscription
}

// NewEventHub creates a hub and subscribes it to the detection subjects.
func NewEventHub(natsConn *nats.Conn) (*EventHub, error) {
	h := &EventHub{
		natsConn:   natsConn,
		clients:    make(map[*EventClient]bool),
		register:   make(chan *EventClient),
		unregister: make(chan *EventClient),
	}

	for subject, typ := range map[string]string{
		SubjectCrossing: "crossing",
		SubjectWaiting:  "waiting",
	} {
		eventType := typ
		sub, err := natsConn.Subscribe(subject, func(msg *nats.Msg) {
			h.broadcast(eventType, msg.Data)
		})
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
		}
		h.subs = append(h.subs, sub)
	}

	return h, nil
}

// Register adds a client to the hub.
func (h *EventHub) Register(client *EventClient) {
	h.register <- client
}

// Run starts the hub's main loop.
func (h *EventHub) Run() {
	log.Println("📡 Event hub started")

	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.clientsMu.Unlock()
			log.Printf("📡 Event client connected: %s", client.remoteAddr)

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMu.Unlock()
			log.Printf("📡 Event client disconnected: %s", client.remoteAddr)
		}
	}
}

// broadcast wraps an event payload in the client envelope and sends it to
// every connected client. Slow clients drop events rather than block.
func (h *EventHub) broadcast(eventType string, data []byte) {
	msg := EventMessage{Type: eventType, Data: data}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- msgBytes:
		default:
		}
	}
}

// HubStats reports current hub state for the monitoring endpoint.
type HubStats struct {
	Clients  int      `json:"clients"`
	Subjects []string `json:"subjects"`
}

func (h *EventHub) Stats() HubStats {
	h.clientsMu.RLock()
	clientCount := len(h.clients)
	h.clientsMu.RUnlock()

	subjects := make([]string, 0, len(h.subs))
	for _, sub := range h.subs {
		subjects = append(subjects, sub.Subject)
	}
	return HubStats{Clients: clientCount, Subjects: subjects}
}

// Close drops the NATS subscriptions.
func (h *EventHub) Close() {
	for _, sub := range h.subs {
		sub.Unsubscribe()
	}
}
