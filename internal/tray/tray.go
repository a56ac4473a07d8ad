// Package tray provides system tray functionality using getlantern/systray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// menuItem is an entry added before the tray is ready
type menuItem struct {
	title    string
	callback func()
}

// Tray shows the relay's connection state in the system tray. Status may be
// called from any goroutine, before or after Run.
type Tray struct {
	tooltip string
	items   []*menuItem
	quitCh  chan struct{}

	mu     sync.Mutex
	status string
	line   *systray.MenuItem
}

// New creates a new system tray
func New(tooltip string) *Tray {
	return &Tray{
		tooltip: tooltip,
		status:  "Starting...",
		quitCh:  make(chan struct{}),
	}
}

// AddMenuItem adds a clickable menu item below the status line
func (t *Tray) AddMenuItem(title string, callback func()) {
	t.items = append(t.items, &menuItem{title: title, callback: callback})
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.items = append(t.items, nil) // nil indicates separator
}

// SetStatus updates the status line and tooltip
func (t *Tray) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	if t.line != nil {
		t.line.SetTitle(status)
		systray.SetTooltip(t.tooltip + ": " + status)
	}
}

// Status returns the current status line
func (t *Tray) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Run starts the tray event loop. It blocks until Stop and must be called
// from the main goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() { close(t.quitCh) })
}

// Done is closed once the tray has exited
func (t *Tray) Done() <-chan struct{} {
	return t.quitCh
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	systray.SetTitle("RM")
	systray.SetIcon(getIcon())

	t.mu.Lock()
	t.line = systray.AddMenuItem(t.status, "Relay connection")
	t.line.Disable()
	systray.SetTooltip(t.tooltip + ": " + t.status)
	t.mu.Unlock()

	systray.AddSeparator()

	for _, mi := range t.items {
		if mi == nil {
			systray.AddSeparator()
			continue
		}
		item := systray.AddMenuItem(mi.title, "")
		if mi.callback == nil {
			continue
		}
		go func(item *systray.MenuItem, callback func()) {
			for {
				select {
				case <-item.ClickedCh:
					callback()
				case <-t.quitCh:
					return
				}
			}
		}(item, mi.callback)
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}

// getIcon returns a placeholder icon (valid 16x16 ICO)
func getIcon() []byte {
	icon := make([]byte, 1118)
	// ICO header, one image
	copy(icon[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	// Directory entry: 16x16, 32bpp, 1096 bytes at offset 22
	copy(icon[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x48, 0x04, 0x00, 0x00,
		0x16, 0x00, 0x00, 0x00,
	})
	// BITMAPINFOHEADER, height doubled for the AND mask
	copy(icon[22:62], []byte{
		0x28, 0x00, 0x00, 0x00,
		0x10, 0x00, 0x00, 0x00,
		0x20, 0x00, 0x00, 0x00,
		0x01, 0x00,
		0x20, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x04, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})
	// Draw a white arrow so the icon is visible on dark panels
	pixels := icon[62 : 62+16*16*4]
	for row := 0; row < 12; row++ {
		// bitmap rows are stored bottom-up
		y := 15 - (row + 2)
		for x := 3; x <= 3+row/2+1 && x < 16; x++ {
			off := (y*16 + x) * 4
			copy(pixels[off:off+4], []byte{0xff, 0xff, 0xff, 0xff})
		}
	}
	return icon
}

// StatusLine formats the status line for a connection state
func StatusLine(remote string, connected bool) string {
	if !connected || remote == "" {
		return "Waiting for client"
	}
	return "Connected: " + remote
}
