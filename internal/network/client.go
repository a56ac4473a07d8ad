package network

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"remotemouse/internal/input"
	"remotemouse/internal/protocol"
)

// Client sends commands to a relay. The protocol has no replies, so a
// successful write is all the confirmation there is.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	enc  *protocol.Encoder
}

// Dial connects to a relay at addr ("host:port")
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		enc:  protocol.NewEncoder(conn),
	}
}

// Send writes one frame
func (c *Client) Send(tag, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.WriteFrame(tag, []byte(payload))
}

// SendLine writes a frame written as "<tag> <payload>", e.g. "mos m 12 -7"
func (c *Client) SendLine(line string) error {
	tag, payload, ok := strings.Cut(strings.TrimSpace(line), " ")
	if !ok {
		return fmt.Errorf("malformed line %q: want \"<tag> <payload>\"", line)
	}
	return c.Send(tag, payload)
}

func (c *Client) mouse(format string, args ...interface{}) error {
	return c.Send(protocol.TagMouse, fmt.Sprintf(format, args...))
}

// Move sends a relative pointer move
func (c *Client) Move(dx, dy int) error {
	return c.mouse("m %d %d", dx, dy)
}

// Click sends a full primary click
func (c *Client) Click() error {
	return c.mouse("c")
}

// Button presses or releases the primary, middle or secondary button
func (c *Client) Button(button input.Button, pressed bool) error {
	var b string
	switch button {
	case input.ButtonPrimary:
		b = "l"
	case input.ButtonMiddle:
		b = "m"
	case input.ButtonSecondary:
		b = "r"
	default:
		return fmt.Errorf("button %s has no raw command", button)
	}
	action := "u"
	if pressed {
		action = "d"
	}
	return c.mouse("R %s %s", b, action)
}

// Scroll sends one wheel step
func (c *Client) Scroll(up bool) error {
	if up {
		return c.mouse("w 1")
	}
	return c.mouse("w 0")
}

// Prepare tells the relay to drop the next motion sample
func (c *Client) Prepare() error {
	return c.mouse("b")
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}
