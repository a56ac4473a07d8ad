// Package autostart provides auto-start functionality.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"text/template"
)

// Label identifies the relay's login item
const Label = "com.remotemouse.relay"

const macLaunchAgentPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
        <string>serve</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>
`

const xdgDesktopEntry = `[Desktop Entry]
Type=Application
Name=remotemouse
Comment=Remote mouse relay
Exec="{{.ExecutablePath}}" serve
Terminal=false
X-GNOME-Autostart-enabled=true
`

type entry struct {
	Label          string
	ExecutablePath string
}

// Enable enables auto-start on login
func Enable() error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	if runtime.GOOS == "windows" {
		return enableWindows(execPath)
	}

	path, tmpl, err := location()
	if err != nil {
		return err
	}
	return writeEntry(path, tmpl, execPath)
}

// Disable disables auto-start on login
func Disable() error {
	if runtime.GOOS == "windows" {
		return disableWindows()
	}

	path, _, err := location()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsEnabled checks if auto-start is enabled
func IsEnabled() bool {
	if runtime.GOOS == "windows" {
		return isEnabledWindows()
	}

	path, _, err := location()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Path returns where the login item lives: a file path, or a registry
// value on Windows
func Path() (string, error) {
	if runtime.GOOS == "windows" {
		return `HKCU\` + runKeyPath + `\` + Label, nil
	}
	path, _, err := location()
	return path, err
}

// location returns the login item file and its template for this platform
func location() (string, string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		return filepath.Join(home, "Library", "LaunchAgents", Label+".plist"), macLaunchAgentPlist, nil
	case "windows":
		return "", "", nil
	default:
		dir, err := xdgAutostartDir()
		if err != nil {
			return "", "", err
		}
		return filepath.Join(dir, Label+".desktop"), xdgDesktopEntry, nil
	}
}

// xdgAutostartDir follows the XDG base directory rules
func xdgAutostartDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "autostart"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "autostart"), nil
}

func writeEntry(path, text, execPath string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpl, err := template.New("autostart").Parse(text)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, entry{Label: Label, ExecutablePath: execPath})
}
