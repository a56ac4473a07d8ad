package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"remotemouse/internal/input"
	"remotemouse/internal/protocol"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API listens on loopback by default; any local page may follow the feed
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans event feed messages out to WebSocket clients
type Hub struct {
	clients    map[*feedClient]bool
	clientsMu  sync.RWMutex
	broadcast  chan protocol.Message
	register   chan *feedClient
	unregister chan *feedClient
	shutdown   chan struct{}
	closeOnce  sync.Once
}

// feedClient represents a connected feed follower
type feedClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	ip   string
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*feedClient]bool),
		broadcast:  make(chan protocol.Message, 256),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		shutdown:   make(chan struct{}),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.clientsMu.Unlock()
			log.Printf("WS: New client registered from %s. Total clients: %d", client.ip, n)

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("WS: Client unregistered from %s. Total clients: %d", client.ip, len(h.clients))
			}
			h.clientsMu.Unlock()

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.shutdown:
			h.clientsMu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

func (h *Hub) broadcastMessage(message protocol.Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("WS: Failed to marshal broadcast message: %v", err)
		return
	}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- jsonMsg:
		default:
			// slow follower, drop it rather than stall the feed
			log.Printf("WS: Dropping slow client %s", client.ip)
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) clientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// publish queues a message without blocking the caller
func (h *Hub) publish(msg protocol.Message) {
	select {
	case h.broadcast <- msg:
	case <-h.shutdown:
	default:
		log.Printf("WS: Broadcast queue full, dropping %s message", msg.Type)
	}
}

// BroadcastInput publishes one input event
func (h *Hub) BroadcastInput(ev input.Event) {
	h.publish(protocol.Message{Type: protocol.TypeInput, Payload: ev})
}

// BroadcastSession publishes a session change
func (h *Hub) BroadcastSession(remote string, connected bool, err error) {
	payload := protocol.SessionPayload{Remote: remote, Connected: connected}
	if err != nil {
		payload.Error = err.Error()
	}
	h.publish(protocol.Message{Type: protocol.TypeSession, Payload: payload})
}

func (h *Hub) close() {
	h.closeOnce.Do(func() { close(h.shutdown) })
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS: Failed to upgrade connection: %v", err)
		return
	}

	client := &feedClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		ip:   r.RemoteAddr,
	}

	select {
	case h.register <- client:
	case <-h.shutdown:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so close frames and pongs are processed.
// Followers have nothing to say; anything they send is ignored.
func (c *feedClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS: Read error: %v", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *feedClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
