// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package netutil provides small address helpers shared by the filter
// policy and the TUI header.
package netutil

import (
	"net"
	"net/netip"
	"os"
	"strings"
)

// DefaultPrivateRanges are the source ranges hidden by the private-source
// toggle: RFC1918 plus loopback and link-local.
var DefaultPrivateRanges = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
}

// PrefixSet answers membership queries against a fixed set of CIDR ranges.
type PrefixSet struct {
	prefixes []netip.Prefix
}

// NewPrefixSet parses the given CIDR strings. Unparsable entries are
// dropped so a typo in config narrows the set instead of breaking startup.
func NewPrefixSet(cidrs []string) *PrefixSet {
	ps := &PrefixSet{}
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(c))
		if err != nil {
			continue
		}
		ps.prefixes = append(ps.prefixes, p)
	}
	return ps
}

// Contains reports whether addr falls inside any range of the set.
// Unparsable addresses are not contained.
func (ps *PrefixSet) Contains(addr string) bool {
	a, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range ps.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// Len returns the number of parsed ranges.
func (ps *PrefixSet) Len() int {
	return len(ps.prefixes)
}

// IsLoopback reports whether the host part of an ss local address column
// refers to a loopback listener.
func IsLoopback(host string) bool {
	host = strings.Trim(host, "[]")
	if host == "" || host == "*" {
		return false
	}
	a, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return a.IsLoopback()
}

// PrimaryIP returns the first non-loopback unicast address of this host,
// or "0.0.0.0" when none can be determined.
func PrimaryIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "0.0.0.0"
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return "0.0.0.0"
}

// Hostname returns the host name, or "unknown" if it cannot be read.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}
