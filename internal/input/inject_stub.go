//go:build !darwin && !linux && !windows

package input

import (
	"fmt"
)

// Stub implementation for platforms without a native backend

// NativeInjector represents a stub input injector
type NativeInjector struct{}

// NewNativeInjector always fails; use the "log" backend instead
func NewNativeInjector(deviceName string) (*NativeInjector, error) {
	return nil, fmt.Errorf("input injection not supported on this platform")
}

// InjectMouseMove injects a mouse movement event (stub)
func (i *NativeInjector) InjectMouseMove(dx, dy int) error {
	return fmt.Errorf("input injection not supported on this platform")
}

// InjectMouseButton injects a mouse button event (stub)
func (i *NativeInjector) InjectMouseButton(button Button, pressed bool) error {
	return fmt.Errorf("input injection not supported on this platform")
}

// Sync (stub)
func (i *NativeInjector) Sync() error { return nil }

// Close (stub)
func (i *NativeInjector) Close() error { return nil }
