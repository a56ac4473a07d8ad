package input

import "sync"

// Recorder is a Sink and Injector that keeps everything it receives in
// memory. It is used by tests and by the "log" backend's callers that want
// to inspect delivered events.
type Recorder struct {
	mu      sync.Mutex
	pending []Event
	events  []Event
	flushes int
	closed  bool
}

// RelativeMotion records a move
func (r *Recorder) RelativeMotion(dx, dy int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, Event{Type: EventMouseMove, DeltaX: dx, DeltaY: dy})
}

// Button records a button event
func (r *Recorder) Button(button Button, pressed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, Event{Type: EventMouseButton, Button: button, Pressed: pressed})
}

// Flush moves pending events to the delivered list
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, r.pending...)
	r.pending = nil
	r.flushes++
	return nil
}

// InjectMouseMove implements Injector
func (r *Recorder) InjectMouseMove(dx, dy int) error {
	r.RelativeMotion(dx, dy)
	return nil
}

// InjectMouseButton implements Injector
func (r *Recorder) InjectMouseButton(button Button, pressed bool) error {
	r.Button(button, pressed)
	return nil
}

// Sync implements Injector
func (r *Recorder) Sync() error {
	return r.Flush()
}

// Close implements Injector
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Events returns the flushed events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Pending returns events recorded but not yet flushed
func (r *Recorder) Pending() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.pending...)
}

// Flushes returns how many times Flush or Sync was called
func (r *Recorder) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

// Closed reports whether Close was called
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Reset drops everything recorded
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
	r.events = nil
	r.flushes = 0
}
