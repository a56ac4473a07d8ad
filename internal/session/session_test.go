package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotemouse/internal/accel"
	"remotemouse/internal/input"
	"remotemouse/internal/protocol"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newDispatcher() *Dispatcher {
	return NewDispatcher(accel.New(accel.DefaultParams(), accel.WithClock(func() time.Time { return epoch })), nil)
}

func frame(t *testing.T, tag, payload string) []byte {
	t.Helper()
	data, err := protocol.Encode(tag, []byte(payload))
	require.NoError(t, err)
	return data
}

func mos(t *testing.T, payload string) []byte {
	return frame(t, protocol.TagMouse, payload)
}

// runSession feeds raw frames through a session over an in-memory pipe and
// returns once the client side has closed.
func runSession(t *testing.T, opts Options, frames ...[]byte) (*input.Recorder, *Session, error) {
	t.Helper()
	server, client := net.Pipe()
	defer server.Close()

	go func() {
		defer client.Close()
		for _, f := range frames {
			if _, err := client.Write(f); err != nil {
				return
			}
		}
	}()

	rec := &input.Recorder{}
	s := New(server, newDispatcher(), rec, opts)
	err := s.Run(context.Background())
	return rec, s, err
}

func move(dx, dy int) input.Event {
	return input.Event{Type: input.EventMouseMove, DeltaX: dx, DeltaY: dy}
}

func button(b input.Button, pressed bool) input.Event {
	return input.Event{Type: input.EventMouseButton, Button: b, Pressed: pressed}
}

func TestSessionAcceleratedMove(t *testing.T) {
	rec, s, err := runSession(t, Options{}, []byte("mos007m 12 -7"))
	require.NoError(t, err)

	assert.Equal(t, []input.Event{move(71, -41)}, rec.Events())
	assert.InDelta(t, 5.92, s.State().Accel.LastMultiplier, 0.01)
}

func TestSessionPrepareSuppressesNextMove(t *testing.T) {
	rec, s, err := runSession(t, Options{},
		mos(t, "b"),
		mos(t, "m 0 0"),
	)
	require.NoError(t, err)

	assert.Equal(t, []input.Event{move(0, 0)}, rec.Events())
	assert.False(t, s.State().JustClicked)
	assert.Equal(t, 2, rec.Flushes())
}

func TestSessionPrepareDropsMotion(t *testing.T) {
	rec, s, err := runSession(t, Options{},
		mos(t, "s"),
		mos(t, "m 30 40"),
	)
	require.NoError(t, err)

	assert.Equal(t, []input.Event{move(0, 0)}, rec.Events())
	assert.Zero(t, s.State().Accel.LastMultiplier, "suppressed samples leave the decay state alone")
	assert.True(t, s.State().Accel.LastTimestamp.IsZero())
}

func TestSessionPrepareEmitsNothing(t *testing.T) {
	rec, s, err := runSession(t, Options{}, mos(t, "b"))
	require.NoError(t, err)

	assert.Empty(t, rec.Events())
	assert.True(t, s.State().JustClicked)
}

func TestSessionButtons(t *testing.T) {
	rec, _, err := runSession(t, Options{},
		mos(t, "R l d"),
		mos(t, "R l u"),
		mos(t, "c"),
		mos(t, "w 1"),
		mos(t, "w 0"),
	)
	require.NoError(t, err)

	assert.Equal(t, []input.Event{
		button(input.ButtonPrimary, true),
		button(input.ButtonPrimary, false),
		button(input.ButtonPrimary, true),
		button(input.ButtonPrimary, false),
		button(input.ButtonScrollUp, true),
		button(input.ButtonScrollUp, false),
		button(input.ButtonScrollDown, true),
		button(input.ButtonScrollDown, false),
	}, rec.Events())
	assert.Equal(t, 5, rec.Flushes(), "one flush per frame")
}

func TestSessionRecoverableErrorsContinue(t *testing.T) {
	rec, _, err := runSession(t, Options{},
		mos(t, "1 2 3 4 5 6 7 8 9"),
		frame(t, "key", "a"),
		mos(t, "m 1"),
		mos(t, "R x d"),
		mos(t, "R l x"),
		mos(t, "w 7"),
		mos(t, "q"),
		mos(t, "   "),
		mos(t, "R r d"),
	)
	require.NoError(t, err)

	assert.Equal(t, []input.Event{button(input.ButtonSecondary, true)}, rec.Events())
	assert.Equal(t, 9, rec.Flushes())
}

func TestSessionInvalidLengthIsFatal(t *testing.T) {
	rec, _, err := runSession(t, Options{},
		mos(t, "c"),
		[]byte("mosXXXm 1 1"),
		mos(t, "c"),
	)
	assert.ErrorIs(t, err, protocol.ErrInvalidLength)
	assert.Len(t, rec.Events(), 2, "frames before the bad header are handled")
}

func TestSessionTruncatedFrameEndsCleanly(t *testing.T) {
	rec, _, err := runSession(t, Options{},
		mos(t, "c"),
		[]byte("mos009m 1"),
	)
	require.NoError(t, err)
	assert.Len(t, rec.Events(), 2)
}

func TestSessionIdleTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	s := New(server, newDispatcher(), &input.Recorder{}, Options{IdleTimeout: 20 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not time out")
	}
}

func TestSessionCancel(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s := New(server, newDispatcher(), &input.Recorder{}, Options{})

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session ignored cancellation")
	}
}

func TestDispatchUnknownTag(t *testing.T) {
	rec := &input.Recorder{}
	var st State
	err := newDispatcher().Dispatch(&st, &protocol.Frame{Tag: "kbd"}, rec)
	assert.ErrorIs(t, err, protocol.ErrUnknownCommand)
	assert.Empty(t, rec.Pending())
}

func TestDispatchDoesNotFlush(t *testing.T) {
	rec := &input.Recorder{}
	var st State
	tokens, err := protocol.Tokenize("c")
	require.NoError(t, err)

	require.NoError(t, newDispatcher().Dispatch(&st, &protocol.Frame{Tag: "mos", Tokens: tokens}, rec))
	assert.Len(t, rec.Pending(), 2)
	assert.Zero(t, rec.Flushes())
}
