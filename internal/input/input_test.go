package input

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingInjector struct {
	Recorder
	failButton bool
}

func (f *failingInjector) InjectMouseButton(button Button, pressed bool) error {
	if f.failButton {
		return errors.New("button failed")
	}
	return f.Recorder.InjectMouseButton(button, pressed)
}

func TestBatchFlushDeliversInOrder(t *testing.T) {
	rec := &Recorder{}
	dev := NewDevice(rec)
	dev.now = func() time.Time { return time.UnixMilli(1700000000000) }

	b := dev.NewBatch()
	b.RelativeMotion(10, -5)
	b.Button(ButtonPrimary, true)
	b.Button(ButtonPrimary, false)

	assert.Empty(t, rec.Events(), "nothing is delivered before Flush")

	require.NoError(t, b.Flush())
	assert.Equal(t, []Event{
		{Type: EventMouseMove, DeltaX: 10, DeltaY: -5},
		{Type: EventMouseButton, Button: ButtonPrimary, Pressed: true},
		{Type: EventMouseButton, Button: ButtonPrimary, Pressed: false},
	}, rec.Events())
	assert.Equal(t, 1, rec.Flushes(), "one sync per flush")

	// the batch is empty again after a flush
	rec.Reset()
	b.RelativeMotion(1, 1)
	require.NoError(t, b.Flush())
	assert.Equal(t, []Event{{Type: EventMouseMove, DeltaX: 1, DeltaY: 1}}, rec.Events())
	assert.Equal(t, 1, rec.Flushes())
	assert.Empty(t, rec.Pending())
}

func TestBatchFlushNotifiesObservers(t *testing.T) {
	dev := NewDevice(&Recorder{})
	dev.now = func() time.Time { return time.UnixMilli(42) }

	var got [][]Event
	dev.OnFlush(func(events []Event) { got = append(got, events) })

	b := dev.NewBatch()
	require.NoError(t, b.Flush())
	assert.Empty(t, got, "empty flushes are not observed")

	b.RelativeMotion(1, 2)
	require.NoError(t, b.Flush())
	require.Len(t, got, 1)
	assert.Equal(t, []Event{{Type: EventMouseMove, DeltaX: 1, DeltaY: 2, Timestamp: 42}}, got[0])
}

func TestBatchFlushContinuesPastErrors(t *testing.T) {
	inj := &failingInjector{failButton: true}
	b := NewDevice(inj).NewBatch()

	b.Button(ButtonSecondary, true)
	b.RelativeMotion(3, 3)

	err := b.Flush()
	assert.Error(t, err)
	assert.Equal(t, []Event{{Type: EventMouseMove, DeltaX: 3, DeltaY: 3}}, inj.Events())
}

func TestDeviceClose(t *testing.T) {
	rec := &Recorder{}
	require.NoError(t, NewDevice(rec).Close())
	assert.True(t, rec.Closed())
}

func TestButtonHelpers(t *testing.T) {
	assert.True(t, ButtonScrollUp.IsScroll())
	assert.True(t, ButtonScrollDown.IsScroll())
	assert.False(t, ButtonPrimary.IsScroll())

	assert.Equal(t, 1, ButtonScrollUp.WheelDelta())
	assert.Equal(t, -1, ButtonScrollDown.WheelDelta())
	assert.Equal(t, 0, ButtonMiddle.WheelDelta())

	assert.Equal(t, "secondary", ButtonSecondary.String())
	assert.Equal(t, "button9", Button(9).String())
}

func TestOpenBackends(t *testing.T) {
	inj, err := Open(BackendLog, "test")
	require.NoError(t, err)
	assert.IsType(t, &LogInjector{}, inj)

	_, err = Open("xdotool", "test")
	assert.Error(t, err)
}
