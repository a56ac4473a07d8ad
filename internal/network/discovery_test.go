package network

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenLoopback(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	return ln, ln.Addr().(*net.TCPAddr).Port
}

func TestProbeHost(t *testing.T) {
	ln, port := listenLoopback(t)

	assert.True(t, probeHost(context.Background(), "127.0.0.1", port))

	require.NoError(t, ln.Close())
	assert.False(t, probeHost(context.Background(), "127.0.0.1", port))
}

func TestProbeHostCancelled(t *testing.T) {
	_, port := listenLoopback(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, probeHost(ctx, "127.0.0.1", port))
}

func TestScanSubnetsFindsListener(t *testing.T) {
	_, port := listenLoopback(t)

	hosts := scanSubnets(context.Background(), []string{"127.0.0"}, port)
	assert.Contains(t, hosts, DiscoveredHost{IP: "127.0.0.1", Port: port})
}

func TestSubnetsOf(t *testing.T) {
	got := subnetsOf([]string{"192.168.1.20", "10.0.0.7", "192.168.1.99", "fe80::1", "garbage"})
	assert.Equal(t, []string{"192.168.1", "10.0.0"}, got)
	assert.Empty(t, subnetsOf(nil))
}

func TestSortHosts(t *testing.T) {
	hosts := []DiscoveredHost{
		{IP: "192.168.1.100"},
		{IP: "10.0.0.9"},
		{IP: "192.168.1.20"},
		{IP: "192.168.1.3"},
	}
	sortHosts(hosts)

	var ips []string
	for _, h := range hosts {
		ips = append(ips, h.IP)
	}
	assert.Equal(t, []string{"10.0.0.9", "192.168.1.3", "192.168.1.20", "192.168.1.100"}, ips)
}

func TestGetLocalIPsAreIPv4(t *testing.T) {
	ips, err := GetLocalIPs()
	require.NoError(t, err)
	for _, s := range ips {
		ip := net.ParseIP(s)
		require.NotNil(t, ip, s)
		assert.NotNil(t, ip.To4(), s)
		assert.False(t, ip.IsLoopback(), s)
	}
}
