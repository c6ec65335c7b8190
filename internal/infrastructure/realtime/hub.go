package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// AIResponse is the event pushed to every connected chat client when
// the external workflow posts back an analysis result.
type AIResponse struct {
	Message     string     `json:"message"`
	ThreadID    string     `json:"threadId,omitempty"`
	Timestamp   string     `json:"timestamp"`
	MessageType string     `json:"messageType"`
	Data        *LeadsData `json:"data,omitempty"`
}

type LeadsData struct {
	Leads interface{} `json:"leads"`
}

// envelope mirrors the socket.io event framing the web client expects.
type envelope struct {
	Event   string     `json:"event"`
	Payload AIResponse `json:"payload"`
}

// Client is one connected websocket.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the set of live clients and fans broadcast events out to
// them. Delivery is fire-and-forget: a client whose send buffer is full
// is dropped rather than allowed to backpressure the webhook handler.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run is the hub's main loop. Start it as a goroutine before serving.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Client connected: %p", client.conn)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("Client disconnected: %p", client.conn)

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client, skip this event for it
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast delivers an ai-response event to every connected client.
// There is no correlation back to the request that triggered the
// analysis, so every live client sees every result.
func (h *Hub) Broadcast(event AIResponse) {
	payload, err := json.Marshal(envelope{Event: "ai-response", Payload: event})
	if err != nil {
		log.Printf("❌ Failed to marshal ai-response event: %v", err)
		return
	}
	h.broadcast <- payload
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler serves one websocket connection. Intended for use with
// websocket.New on the /ws route.
func (h *Hub) Handler(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.register <- client

	// Writer; ends when the hub closes the send channel
	done := make(chan struct{})
	go func() {
		defer close(done)
		for message := range client.send {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}()

	// Reader; clients send nothing we act on, but the read loop
	// detects disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister <- client
	<-done
}
