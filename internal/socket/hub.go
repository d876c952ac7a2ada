// Package socket fans dashboard updates out to connected browsers.
package socket

import (
	"sync"

	"github.com/rs/zerolog"
)

// SendBuffer is the number of queued messages per client before new ones
// are dropped.
const SendBuffer = 16

// Client is one websocket connection. Session is the signed-in user id and
// Topic the board the page is showing.
type Client struct {
	ID      string
	Session string
	Topic   string
	Send    chan []byte
}

func NewClient(id, session, topic string) *Client {
	return &Client{ID: id, Session: session, Topic: topic, Send: make(chan []byte, SendBuffer)}
}

// Hub tracks the connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{clients: make(map[string]*Client), log: log}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	h.log.Debug().Str("client", c.ID).Str("session", c.Session).Str("topic", c.Topic).Msg("websocket client registered")
}

// Unregister removes the client and closes its send channel. Calling it
// twice is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	close(c.Send)
	h.log.Debug().Str("client", c.ID).Msg("websocket client unregistered")
}

// Send queues payload for every client of session subscribed to topic and
// returns how many accepted it.
func (h *Hub) Send(session, topic string, payload []byte) int {
	return h.deliver(payload, func(c *Client) bool { return c.Session == session && c.Topic == topic })
}

func (h *Hub) deliver(payload []byte, match func(*Client) bool) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range h.clients {
		if !match(c) {
			continue
		}
		select {
		case c.Send <- payload:
			n++
		default:
			h.log.Warn().Str("client", c.ID).Msg("drop message for slow client")
		}
	}
	return n
}
