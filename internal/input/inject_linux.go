//go:build linux

package input

import (
	"fmt"
	"os"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux implementation of input injection through a uinput virtual pointer.
// Works under X11, Wayland and on the console; needs write access to
// /dev/uinput (the "input" group or a udev rule).

const uinputPath = "/dev/uinput"

// ioctl requests from linux/uinput.h
const (
	uiDevCreate  = 0x5501     // _IO('U', 1)
	uiDevDestroy = 0x5502     // _IO('U', 2)
	uiSetEvBit   = 0x40045564 // _IOW('U', 100, int)
	uiSetKeyBit  = 0x40045565 // _IOW('U', 101, int)
	uiSetRelBit  = 0x40045566 // _IOW('U', 102, int)
)

// event codes from linux/input-event-codes.h
const (
	evSyn     = 0x00
	evKey     = 0x01
	evRel     = 0x02
	synReport = 0x00
	relX      = 0x00
	relY      = 0x01
	relWheel  = 0x08
	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

const (
	uinputMaxNameSize = 80
	absCnt            = 64
	busVirtual        = 0x06
)

// uinputUserDev mirrors struct uinput_user_dev
type uinputUserDev struct {
	Name      [uinputMaxNameSize]byte
	Bustype   uint16
	Vendor    uint16
	Product   uint16
	Version   uint16
	FFEffects uint32
	AbsMax    [absCnt]int32
	AbsMin    [absCnt]int32
	AbsFuzz   [absCnt]int32
	AbsFlat   [absCnt]int32
}

// inputEvent mirrors struct input_event
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

var linuxButtons = map[Button]uint16{
	ButtonPrimary:   btnLeft,
	ButtonMiddle:    btnMiddle,
	ButtonSecondary: btnRight,
}

// NativeInjector represents a Linux uinput injector
type NativeInjector struct {
	mu sync.Mutex
	fd int
}

// NewNativeInjector creates the virtual pointer device
func NewNativeInjector(deviceName string) (*NativeInjector, error) {
	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uinputPath, err)
	}

	inj := &NativeInjector{fd: fd}
	if err := inj.setup(deviceName); err != nil {
		unix.Close(fd)
		return nil, err
	}

	// Give the compositor / X server time to pick up the new device,
	// otherwise the first events are dropped.
	time.Sleep(200 * time.Millisecond)
	return inj, nil
}

func (i *NativeInjector) setup(deviceName string) error {
	bits := []struct {
		req uint
		val int
	}{
		{uiSetEvBit, evKey},
		{uiSetEvBit, evRel},
		{uiSetEvBit, evSyn},
		{uiSetKeyBit, btnLeft},
		{uiSetKeyBit, btnRight},
		{uiSetKeyBit, btnMiddle},
		{uiSetRelBit, relX},
		{uiSetRelBit, relY},
		{uiSetRelBit, relWheel},
	}
	for _, b := range bits {
		if err := unix.IoctlSetInt(i.fd, b.req, b.val); err != nil {
			return fmt.Errorf("uinput ioctl 0x%x(%d): %w", b.req, b.val, err)
		}
	}

	var dev uinputUserDev
	copy(dev.Name[:uinputMaxNameSize-1], deviceName)
	dev.Bustype = busVirtual
	dev.Vendor = 0x1978
	dev.Product = 0x0001
	dev.Version = 1

	buf := unsafe.Slice((*byte)(unsafe.Pointer(&dev)), unsafe.Sizeof(dev))
	if _, err := unix.Write(i.fd, buf); err != nil {
		return fmt.Errorf("uinput setup: %w", err)
	}

	if err := unix.IoctlSetInt(i.fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("uinput create: %w", os.NewSyscallError("ioctl", err))
	}
	return nil
}

func (i *NativeInjector) emit(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&ev)), unsafe.Sizeof(ev))
	_, err := unix.Write(i.fd, buf)
	return err
}

// InjectMouseMove injects a relative mouse movement
func (i *NativeInjector) InjectMouseMove(dx, dy int) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if dx != 0 {
		if err := i.emit(evRel, relX, int32(dx)); err != nil {
			return err
		}
	}
	if dy != 0 {
		if err := i.emit(evRel, relY, int32(dy)); err != nil {
			return err
		}
	}
	return nil
}

// InjectMouseButton injects a button press or release. Scroll buttons turn
// into one wheel step on press; their release is ignored.
func (i *NativeInjector) InjectMouseButton(button Button, pressed bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if button.IsScroll() {
		if !pressed {
			return nil
		}
		return i.emit(evRel, relWheel, int32(button.WheelDelta()))
	}

	code, ok := linuxButtons[button]
	if !ok {
		return fmt.Errorf("invalid button: %s", button)
	}
	var value int32
	if pressed {
		value = 1
	}
	return i.emit(evKey, code, value)
}

// Sync emits SYN_REPORT so the kernel publishes the pending events
func (i *NativeInjector) Sync() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.emit(evSyn, synReport, 0)
}

// Close destroys the virtual device
func (i *NativeInjector) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.fd < 0 {
		return nil
	}
	unix.IoctlSetInt(i.fd, uiDevDestroy, 0)
	err := unix.Close(i.fd)
	i.fd = -1
	return err
}
