// Package network provides the relay's TCP listener and client, the event
// feed client and LAN discovery.
package network

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"
)

// DiscoveredHost represents a relay found on the network
type DiscoveredHost struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// GetLocalIP returns the primary local IP address
func GetLocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// ScanLAN scans the /24 of every local IPv4 interface for hosts accepting
// TCP connections on port. A probe occupies the relay's single session slot
// for the instant it takes to connect and close.
func ScanLAN(ctx context.Context, port int) ([]DiscoveredHost, error) {
	ips, err := GetLocalIPs()
	if err != nil || len(ips) == 0 {
		// fall back to the address of the default route
		ip, ipErr := GetLocalIP()
		if ipErr != nil {
			return nil, fmt.Errorf("failed to get local IP: %w", ipErr)
		}
		ips = []string{ip}
	}

	subnets := subnetsOf(ips)
	if len(subnets) == 0 {
		return nil, fmt.Errorf("no IPv4 subnet to scan in %v", ips)
	}
	return scanSubnets(ctx, subnets, port), nil
}

// subnetsOf returns the distinct /24 prefixes ("192.168.1") of ips, in
// first-seen order
func subnetsOf(ips []string) []string {
	seen := make(map[string]bool)
	var subnets []string
	for _, s := range ips {
		ip := net.ParseIP(s).To4()
		if ip == nil {
			continue
		}
		subnet := fmt.Sprintf("%d.%d.%d", ip[0], ip[1], ip[2])
		if !seen[subnet] {
			seen[subnet] = true
			subnets = append(subnets, subnet)
		}
	}
	return subnets
}

// scanSubnets probes hosts 1-254 of each subnet concurrently
func scanSubnets(ctx context.Context, subnets []string, port int) []DiscoveredHost {
	var hosts []DiscoveredHost
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, subnet := range subnets {
		for i := 1; i <= 254; i++ {
			wg.Add(1)
			go func(ip string) {
				defer wg.Done()
				if probeHost(ctx, ip, port) {
					mu.Lock()
					hosts = append(hosts, DiscoveredHost{IP: ip, Port: port})
					mu.Unlock()
				}
			}(fmt.Sprintf("%s.%d", subnet, i))
		}
	}

	wg.Wait()
	sortHosts(hosts)
	return hosts
}

// sortHosts orders hosts by address, numerically octet by octet
func sortHosts(hosts []DiscoveredHost) {
	sort.Slice(hosts, func(i, j int) bool {
		a, b := net.ParseIP(hosts[i].IP).To4(), net.ParseIP(hosts[j].IP).To4()
		if a == nil || b == nil {
			return hosts[i].IP < hosts[j].IP
		}
		return bytes.Compare(a, b) < 0
	})
}

// probeHost checks whether ip accepts TCP connections on port
func probeHost(ctx context.Context, ip string, port int) bool {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip, fmt.Sprint(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// GetLocalIPs returns the IPv4 addresses of every interface that is up,
// loopback excluded
func GetLocalIPs() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var ips []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				ips = append(ips, ip4.String())
			}
		}
	}
	return ips, nil
}
