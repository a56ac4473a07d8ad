//go:build darwin

package input

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <ApplicationServices/ApplicationServices.h>

bool hasAccessibilityPermissions() {
    return AXIsProcessTrusted();
}

CGPoint getCurrentMousePosition() {
    CGEventRef event = CGEventCreate(NULL);
    CGPoint cursor = CGEventGetLocation(event);
    CFRelease(event);
    return cursor;
}

// Moves by a relative delta. While a button is held the event has to be a
// drag, otherwise selections and window moves stop following the pointer.
void injectMouseMove(CGFloat dx, CGFloat dy, int held) {
    CGPoint currentPos = getCurrentMousePosition();
    CGPoint newPos = CGPointMake(currentPos.x + dx, currentPos.y + dy);

    CGEventType eventType = kCGEventMouseMoved;
    CGMouseButton cgButton = kCGMouseButtonLeft;
    switch (held) {
        case 1: eventType = kCGEventLeftMouseDragged; break;
        case 2: eventType = kCGEventOtherMouseDragged; cgButton = kCGMouseButtonCenter; break;
        case 3: eventType = kCGEventRightMouseDragged; cgButton = kCGMouseButtonRight; break;
    }

    CGEventRef event = CGEventCreateMouseEvent(NULL, eventType, newPos, cgButton);
    CGEventSetIntegerValueField(event, kCGMouseEventDeltaX, (int64_t)dx);
    CGEventSetIntegerValueField(event, kCGMouseEventDeltaY, (int64_t)dy);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}

// button: 1 = left, 2 = middle, 3 = right
void injectMouseButton(int button, bool pressed) {
    CGMouseButton cgButton;
    CGEventType eventType;

    switch (button) {
        case 1:
            cgButton = kCGMouseButtonLeft;
            eventType = pressed ? kCGEventLeftMouseDown : kCGEventLeftMouseUp;
            break;
        case 2:
            cgButton = kCGMouseButtonCenter;
            eventType = pressed ? kCGEventOtherMouseDown : kCGEventOtherMouseUp;
            break;
        case 3:
            cgButton = kCGMouseButtonRight;
            eventType = pressed ? kCGEventRightMouseDown : kCGEventRightMouseUp;
            break;
        default:
            return;
    }

    CGPoint currentPos = getCurrentMousePosition();
    CGEventRef event = CGEventCreateMouseEvent(NULL, eventType, currentPos, cgButton);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}

void injectScroll(int32_t lines) {
    CGEventRef event = CGEventCreateScrollWheelEvent(NULL, kCGScrollEventUnitLine, 1, lines);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}
*/
import "C"

import (
	"fmt"
	"log"
	"sync"
)

// macOS implementation of input injection using CoreGraphics

// NativeInjector represents a macOS input injector
type NativeInjector struct {
	mu   sync.Mutex
	held Button // button currently pressed, 0 when none
}

// NewNativeInjector creates a new input injector for macOS. The device name
// is unused; events are posted to the login session.
func NewNativeInjector(deviceName string) (*NativeInjector, error) {
	if !bool(C.hasAccessibilityPermissions()) {
		log.Println("Input: accessibility permission missing, macOS will drop injected events")
	}
	return &NativeInjector{}, nil
}

// InjectMouseMove injects a mouse movement event
func (i *NativeInjector) InjectMouseMove(dx, dy int) error {
	i.mu.Lock()
	held := i.held
	i.mu.Unlock()

	C.injectMouseMove(C.CGFloat(dx), C.CGFloat(dy), C.int(held))
	return nil
}

// InjectMouseButton injects a mouse button event
func (i *NativeInjector) InjectMouseButton(button Button, pressed bool) error {
	if button.IsScroll() {
		if pressed {
			C.injectScroll(C.int32_t(button.WheelDelta()))
		}
		return nil
	}

	if button < ButtonPrimary || button > ButtonSecondary {
		return fmt.Errorf("invalid button number: %d", button)
	}

	i.mu.Lock()
	if pressed {
		i.held = button
	} else if i.held == button {
		i.held = 0
	}
	i.mu.Unlock()

	C.injectMouseButton(C.int(button), C.bool(pressed))
	return nil
}

// Sync is a no-op, CGEventPost delivers immediately
func (i *NativeInjector) Sync() error { return nil }

// Close is a no-op
func (i *NativeInjector) Close() error { return nil }
