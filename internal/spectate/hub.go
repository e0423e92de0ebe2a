package spectate

import (
	"encoding/json"
	"sync"
)

type Hub struct {
	mu        sync.Mutex
	clients   map[*Client]struct{}
	broadcast chan wsMessage
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan wsMessage, 64),
	}
}

// Run fans broadcast messages out to every client until done is closed, then
// disconnects them all.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.closeAll()
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				client.sendJSON(msg)
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues msg for delivery; it is dropped when the queue is full so a
// slow spectator never stalls the game.
func (h *Hub) Publish(msgType string, payload any) {
	select {
	case h.broadcast <- wsMessage{Type: msgType, Payload: mustMarshal(payload)}:
	default:
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// SendTo delivers msg to c alone if it is still connected.
func (h *Hub) SendTo(c *Client, msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		c.sendJSON(msg)
	}
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
