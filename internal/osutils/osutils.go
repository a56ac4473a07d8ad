// Package osutils holds the host integration the relay needs beyond input
// injection: opening its port in the Windows firewall.
package osutils

import (
	"fmt"
	"strconv"
	"strings"
)

// FirewallRuleName is the display name of the inbound rule for the relay port
const FirewallRuleName = "remotemouse relay"

// firewallScript returns the PowerShell that replaces the relay's inbound rule
func firewallScript(rule string, port int) string {
	return fmt.Sprintf(
		"Remove-NetFirewallRule -DisplayName '%s' -ErrorAction SilentlyContinue; New-NetFirewallRule -DisplayName '%s' -Direction Inbound -LocalPort %d -Protocol TCP -Action Allow -Profile Private,Domain",
		rule, rule, port,
	)
}

// ruleMatches reports whether netsh output shows an allow rule for port
func ruleMatches(netshOutput, rule string, port int) bool {
	if !strings.Contains(netshOutput, rule) || !strings.Contains(netshOutput, "Allow") {
		return false
	}
	for _, line := range strings.Split(netshOutput, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) != "LocalPort" {
			continue
		}
		return strings.TrimSpace(value) == strconv.Itoa(port)
	}
	return false
}
