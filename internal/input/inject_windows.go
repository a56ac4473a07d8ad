//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Windows implementation of input injection using SendInput

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputMouse = 0

	mouseeventfMove       = 0x0001
	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040
	mouseeventfWheel      = 0x0800

	wheelDelta = 120
)

// mouseInput mirrors MOUSEINPUT
type mouseInput struct {
	Dx        int32
	Dy        int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// winInput mirrors INPUT for the mouse variant; MOUSEINPUT is the largest
// member of the union so the sizes match.
type winInput struct {
	Type  uint32
	Mouse mouseInput
}

var windowsButtonFlags = map[Button][2]uint32{
	ButtonPrimary:   {mouseeventfLeftDown, mouseeventfLeftUp},
	ButtonMiddle:    {mouseeventfMiddleDown, mouseeventfMiddleUp},
	ButtonSecondary: {mouseeventfRightDown, mouseeventfRightUp},
}

// NativeInjector represents a Windows input injector
type NativeInjector struct{}

// NewNativeInjector creates a new injector. The device name is unused.
func NewNativeInjector(deviceName string) (*NativeInjector, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("SendInput unavailable: %w", err)
	}
	return &NativeInjector{}, nil
}

func sendMouse(mi mouseInput) error {
	in := winInput{Type: inputMouse, Mouse: mi}
	n, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if n != 1 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}

// InjectMouseMove injects a relative mouse movement
func (i *NativeInjector) InjectMouseMove(dx, dy int) error {
	return sendMouse(mouseInput{Dx: int32(dx), Dy: int32(dy), Flags: mouseeventfMove})
}

// InjectMouseButton injects a mouse button event
func (i *NativeInjector) InjectMouseButton(button Button, pressed bool) error {
	if button.IsScroll() {
		if !pressed {
			return nil
		}
		delta := int32(button.WheelDelta() * wheelDelta)
		return sendMouse(mouseInput{MouseData: uint32(delta), Flags: mouseeventfWheel})
	}

	flags, ok := windowsButtonFlags[button]
	if !ok {
		return fmt.Errorf("invalid button number: %d", button)
	}
	flag := flags[1]
	if pressed {
		flag = flags[0]
	}
	return sendMouse(mouseInput{Flags: flag})
}

// Sync is a no-op, SendInput delivers immediately
func (i *NativeInjector) Sync() error { return nil }

// Close is a no-op
func (i *NativeInjector) Close() error { return nil }
