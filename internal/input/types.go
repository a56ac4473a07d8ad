// Package input provides the input sink the relay emits pointer events to,
// and the platform injectors that deliver them to the local desktop.
package input

import "fmt"

// Button identifies a pointer button. Wheel steps are modelled as presses of
// the two scroll buttons, as X11 does.
type Button int

const (
	ButtonPrimary    Button = 1
	ButtonMiddle     Button = 2
	ButtonSecondary  Button = 3
	ButtonScrollDown Button = 4
	ButtonScrollUp   Button = 5
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonMiddle:
		return "middle"
	case ButtonSecondary:
		return "secondary"
	case ButtonScrollDown:
		return "scroll_down"
	case ButtonScrollUp:
		return "scroll_up"
	default:
		return fmt.Sprintf("button%d", int(b))
	}
}

// IsScroll reports whether b is one of the wheel buttons
func (b Button) IsScroll() bool {
	return b == ButtonScrollDown || b == ButtonScrollUp
}

// WheelDelta returns the wheel step of a scroll button: +1 up, -1 down, 0 otherwise
func (b Button) WheelDelta() int {
	switch b {
	case ButtonScrollUp:
		return 1
	case ButtonScrollDown:
		return -1
	default:
		return 0
	}
}

// Event types
const (
	EventMouseMove   = "mouse_move"
	EventMouseButton = "mouse_btn"
)

// Event represents a pointer event emitted by a session
type Event struct {
	Type      string `json:"type"` // "mouse_move", "mouse_btn"
	DeltaX    int    `json:"dx,omitempty"`
	DeltaY    int    `json:"dy,omitempty"`
	Button    Button `json:"btn,omitempty"`
	Pressed   bool   `json:"pressed,omitempty"`
	Timestamp int64  `json:"ts"` // Unix ms timestamp
}

// Sink receives the events of one handled frame. Events are buffered until
// Flush, which is called exactly once per frame.
type Sink interface {
	RelativeMotion(dx, dy int)
	Button(button Button, pressed bool)
	Flush() error
}

// Injector delivers events to the local input system
type Injector interface {
	InjectMouseMove(dx, dy int) error
	InjectMouseButton(button Button, pressed bool) error
	// Sync makes previously injected events visible, where the backend
	// batches them (uinput SYN_REPORT, XFlush).
	Sync() error
	Close() error
}
