//go:build windows

package osutils

import (
	"fmt"
	"log"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// IsAdmin checks if the current process has administrative privileges
func IsAdmin() bool {
	var token windows.Token
	h, _ := windows.GetCurrentProcess()
	if err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token); err != nil {
		return false
	}
	defer token.Close()

	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}
	return member
}

// EnsureFirewallRule makes sure an inbound TCP allow rule exists for the
// relay port, asking for elevation through UAC when needed.
func EnsureFirewallRule(port int) error {
	log.Printf("Firewall: Checking rule '%s' for port %d", FirewallRuleName, port)

	output, err := exec.Command("netsh", "advfirewall", "firewall", "show", "rule", "name="+FirewallRuleName).CombinedOutput()
	if err == nil && ruleMatches(string(output), FirewallRuleName, port) {
		log.Printf("Firewall: Rule already allows port %d", port)
		return nil
	}

	script := firewallScript(FirewallRuleName, port)

	if IsAdmin() {
		if output, err := exec.Command("powershell", "-NoProfile", "-Command", script).CombinedOutput(); err != nil {
			return fmt.Errorf("create firewall rule: %w (output: %s)", err, output)
		}
		log.Printf("Firewall: Rule created for port %d", port)
		return nil
	}

	log.Println("Firewall: Not elevated, requesting UAC prompt")
	verbPtr, _ := syscall.UTF16PtrFromString("runas")
	exePtr, _ := syscall.UTF16PtrFromString("powershell.exe")
	argPtr, _ := syscall.UTF16PtrFromString(fmt.Sprintf("-NoProfile -WindowStyle Hidden -Command \"%s\"", script))

	if err := windows.ShellExecute(0, verbPtr, exePtr, argPtr, nil, windows.SW_HIDE); err != nil {
		return fmt.Errorf("launch elevated powershell: %w", err)
	}
	return nil
}
