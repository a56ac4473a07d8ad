package input

import "log"

// LogInjector writes every event to the log instead of a desktop. It backs
// the "log" backend on headless hosts and when debugging clients.
type LogInjector struct{}

// NewLogInjector creates a logging injector
func NewLogInjector() *LogInjector {
	return &LogInjector{}
}

// InjectMouseMove logs a move
func (LogInjector) InjectMouseMove(dx, dy int) error {
	log.Printf("Input: move dx=%d dy=%d", dx, dy)
	return nil
}

// InjectMouseButton logs a button event
func (LogInjector) InjectMouseButton(button Button, pressed bool) error {
	log.Printf("Input: button %s pressed=%v", button, pressed)
	return nil
}

// Sync is a no-op
func (LogInjector) Sync() error { return nil }

// Close is a no-op
func (LogInjector) Close() error { return nil }
