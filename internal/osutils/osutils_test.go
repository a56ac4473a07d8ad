package osutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const netshSample = `
Rule Name:                            remotemouse relay
----------------------------------------------------------------------
Enabled:                              Yes
Direction:                            In
Profiles:                             Domain,Private
LocalIP:                              Any
RemoteIP:                             Any
Protocol:                             TCP
LocalPort:                            1978
RemotePort:                           Any
Action:                               Allow
Ok.
`

func TestRuleMatches(t *testing.T) {
	assert.True(t, ruleMatches(netshSample, FirewallRuleName, 1978))
	assert.False(t, ruleMatches(netshSample, FirewallRuleName, 19780))
	assert.False(t, ruleMatches(netshSample, "other rule", 1978))
	assert.False(t, ruleMatches("No rules match the specified criteria.", FirewallRuleName, 1978))
}

func TestFirewallScript(t *testing.T) {
	script := firewallScript(FirewallRuleName, 1978)
	assert.Contains(t, script, "-LocalPort 1978")
	assert.Contains(t, script, "-Protocol TCP")
	assert.Contains(t, script, "Remove-NetFirewallRule -DisplayName 'remotemouse relay'")
}
