// Package protocol implements the relay's framed text command protocol and
// the JSON messages of the local event feed.
package protocol

// MessageType defines the type of an event feed message
type MessageType string

const (
	// TypeSession is sent when a client connects or disconnects
	TypeSession MessageType = "session"

	// TypeInput is sent for every input event flushed to the sink
	TypeInput MessageType = "input"
)

// Message is the generic container for event feed messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// SessionPayload is the payload for TypeSession
type SessionPayload struct {
	Remote    string `json:"remote"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}
