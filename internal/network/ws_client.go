package network

import (
	"encoding/json"
	"log"
	"net/url"
	"sync"
	"time"

	"remotemouse/internal/input"
	"remotemouse/internal/protocol"

	"github.com/gorilla/websocket"
)

// FeedClient follows a relay's event feed (the /ws endpoint of its status
// API) and reconnects when the relay goes away.
type FeedClient struct {
	apiAddr string
	done    chan struct{}
	once    sync.Once

	// Callbacks
	OnInput   func(ev input.Event)
	OnSession func(ev protocol.SessionPayload)

	mu          sync.Mutex
	conn        *websocket.Conn
	isConnected bool
}

// feedMessage is protocol.Message with the payload left undecoded
type feedMessage struct {
	Type    protocol.MessageType `json:"type"`
	Payload json.RawMessage      `json:"payload"`
}

// NewFeedClient creates a client for the status API at apiAddr ("host:port")
func NewFeedClient(apiAddr string) *FeedClient {
	return &FeedClient{
		apiAddr: apiAddr,
		done:    make(chan struct{}),
	}
}

// Start begins the client loop (connect & process)
func (c *FeedClient) Start() {
	go c.loop()
}

func (c *FeedClient) loop() {
	for {
		c.connect()

		// If connect returns, it means we disconnected. Wait a bit and retry.
		select {
		case <-c.done:
			return
		case <-time.After(2 * time.Second):
			log.Println("Feed: Attempting reconnection...")
			continue
		}
	}
}

func (c *FeedClient) connect() {
	u := url.URL{Scheme: "ws", Host: c.apiAddr, Path: "/ws"}
	log.Printf("Feed: Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Printf("Feed: Connection failed: %v", err)
		return
	}
	defer conn.Close()

	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		return
	default:
	}
	c.conn = conn
	c.isConnected = true
	c.mu.Unlock()

	log.Println("Feed: Connected")
	c.readPump(conn)

	c.mu.Lock()
	c.isConnected = false
	c.conn = nil
	c.mu.Unlock()
}

func (c *FeedClient) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(4096)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Feed: Read error: %v", err)
			}
			return
		}

		var msg feedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Feed: Invalid message: %v", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *FeedClient) handleMessage(msg feedMessage) {
	switch msg.Type {
	case protocol.TypeInput:
		var ev input.Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			log.Printf("Feed: Invalid input payload: %v", err)
			return
		}
		if c.OnInput != nil {
			c.OnInput(ev)
		}

	case protocol.TypeSession:
		var ev protocol.SessionPayload
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			log.Printf("Feed: Invalid session payload: %v", err)
			return
		}
		if c.OnSession != nil {
			c.OnSession(ev)
		}
	}
}

// IsConnected returns true if the feed is connected
func (c *FeedClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected
}

// Close stops the client
func (c *FeedClient) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}
