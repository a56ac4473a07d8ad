//go:build !windows

package autostart

import "errors"

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

var errNotWindows = errors.New("registry login items are only available on Windows")

func enableWindows(string) error { return errNotWindows }

func disableWindows() error { return errNotWindows }

func isEnabledWindows() bool { return false }
