package input

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Device is the single pointer all sessions share. It serialises delivery
// to the injector and fans flushed events out to observers.
type Device struct {
	mu        sync.Mutex
	injector  Injector
	observers []func([]Event)
	now       func() time.Time
}

// NewDevice wraps an injector
func NewDevice(injector Injector) *Device {
	return &Device{
		injector: injector,
		now:      time.Now,
	}
}

// OnFlush registers a callback receiving every non-empty flushed batch.
// Register observers before the first session starts.
func (d *Device) OnFlush(fn func([]Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// NewBatch returns an empty per-session batch bound to d
func (d *Device) NewBatch() *Batch {
	return &Batch{device: d}
}

// Close releases the injector
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.injector.Close()
}

// deliver injects events in order and syncs once. Delivery goes on past a
// failing event so a broken button does not swallow the rest of the frame.
func (d *Device) deliver(events []Event) error {
	d.mu.Lock()
	var errs []error
	for _, ev := range events {
		var err error
		switch ev.Type {
		case EventMouseMove:
			err = d.injector.InjectMouseMove(ev.DeltaX, ev.DeltaY)
		case EventMouseButton:
			err = d.injector.InjectMouseButton(ev.Button, ev.Pressed)
		default:
			err = fmt.Errorf("unknown event type %q", ev.Type)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.injector.Sync(); err != nil {
		errs = append(errs, err)
	}
	observers := d.observers
	d.mu.Unlock()

	if len(events) > 0 {
		for _, fn := range observers {
			fn(events)
		}
	}
	return errors.Join(errs...)
}

// Batch buffers the events of one frame. It is owned by a single session
// and is not safe for concurrent use.
type Batch struct {
	device  *Device
	pending []Event
}

// RelativeMotion queues a pointer move
func (b *Batch) RelativeMotion(dx, dy int) {
	b.pending = append(b.pending, Event{
		Type:      EventMouseMove,
		DeltaX:    dx,
		DeltaY:    dy,
		Timestamp: b.device.now().UnixMilli(),
	})
}

// Button queues a button press or release
func (b *Batch) Button(button Button, pressed bool) {
	b.pending = append(b.pending, Event{
		Type:      EventMouseButton,
		Button:    button,
		Pressed:   pressed,
		Timestamp: b.device.now().UnixMilli(),
	})
}

// Flush delivers the queued events to the device
func (b *Batch) Flush() error {
	events := b.pending
	b.pending = nil
	return b.device.deliver(events)
}
