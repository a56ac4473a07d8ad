//go:build !windows

package osutils

import "log"

// IsAdmin is a stub for non-Windows platforms
func IsAdmin() bool {
	return false
}

// EnsureFirewallRule is a stub for non-Windows platforms
func EnsureFirewallRule(port int) error {
	log.Printf("Firewall: automatic rule management is only supported on Windows; allow TCP %d manually if a firewall is active", port)
	return nil
}
