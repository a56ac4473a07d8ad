// Package session runs one client connection: it decodes frames, interprets
// mouse commands and emits the resulting pointer events.
package session

import (
	"fmt"

	"remotemouse/internal/accel"
	"remotemouse/internal/input"
	"remotemouse/internal/metrics"
	"remotemouse/internal/protocol"
)

// State is everything a connection remembers between frames. The zero
// value is the state of a freshly accepted connection.
type State struct {
	// JustClicked drops the next motion sample. Clients send it before a
	// drag or selection so the motion that accumulated while the finger
	// rested does not fling the pointer.
	JustClicked bool

	Accel accel.State
}

// Dispatcher turns decoded frames into input events
type Dispatcher struct {
	engine  *accel.Engine
	metrics *metrics.Metrics
}

// NewDispatcher creates a dispatcher. m may be nil.
func NewDispatcher(engine *accel.Engine, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		engine:  engine,
		metrics: m,
	}
}

// Dispatch handles one frame, emitting events into sink without flushing
// it. The returned error describes a rejected frame; it never ends the
// session.
func (d *Dispatcher) Dispatch(st *State, frame *protocol.Frame, sink input.Sink) error {
	if frame.Tag != protocol.TagMouse {
		return fmt.Errorf("%w: %q", protocol.ErrUnknownCommand, frame.Tag)
	}

	cmd, err := protocol.ParseMouseCommand(frame.Tokens)
	if err != nil {
		return err
	}

	switch cmd.Op {
	case protocol.OpMove:
		dx, dy := d.move(st, cmd.DX, cmd.DY)
		sink.RelativeMotion(dx, dy)

	case protocol.OpClick:
		sink.Button(cmd.Button, true)
		sink.Button(cmd.Button, false)

	case protocol.OpButton:
		sink.Button(cmd.Button, cmd.Pressed)

	case protocol.OpScroll:
		sink.Button(cmd.Button, true)
		sink.Button(cmd.Button, false)

	case protocol.OpPrepare:
		st.JustClicked = true

	default:
		panic(fmt.Sprintf("session: unhandled mouse op %v", cmd.Op))
	}
	return nil
}

// move applies the just-clicked suppression and acceleration
func (d *Dispatcher) move(st *State, dx, dy int) (int, int) {
	if st.JustClicked {
		st.JustClicked = false
		return 0, 0
	}

	dx, dy, m := d.engine.Apply(&st.Accel, dx, dy)
	if dx != 0 || dy != 0 {
		d.metrics.Multiplier(m)
	}
	return dx, dy
}
