//go:build !windows

package autostart

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	return home
}

func TestEnableDisable(t *testing.T) {
	home := isolateHome(t)

	assert.False(t, IsEnabled())
	require.NoError(t, Enable())
	assert.True(t, IsEnabled())

	path, err := Path()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Contains(t, path, home)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	exe, err := os.Executable()
	require.NoError(t, err)
	assert.Contains(t, string(data), exe)
	assert.Contains(t, string(data), "serve")

	require.NoError(t, Disable())
	assert.False(t, IsEnabled())

	// disabling twice is fine
	require.NoError(t, Disable())
}

func TestXDGLocation(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("macOS uses a LaunchAgent")
	}
	home := isolateHome(t)

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "xdg", "autostart", Label+".desktop"), path)

	t.Setenv("XDG_CONFIG_HOME", "")
	path, err = Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "autostart", Label+".desktop"), path)
}

func TestDesktopEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.desktop")
	require.NoError(t, writeEntry(path, xdgDesktopEntry, "/opt/remote mouse/remotemouse"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `Exec="/opt/remote mouse/remotemouse" serve`)
	assert.Contains(t, string(data), "[Desktop Entry]")
}
