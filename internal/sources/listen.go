// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package sources

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"grimm.is/lurewatch/internal/netutil"
)

// ListenSource derives the watched-port set from the ports this host is
// actually listening on, via `ss -Hlnpt`.
type ListenSource struct {
	runner Runner

	// Fallback is returned when discovery fails or finds nothing.
	Fallback []int
}

// NewListenSource creates a source using the given command runner.
func NewListenSource(runner Runner, fallback []int) *ListenSource {
	return &ListenSource{runner: runner, Fallback: fallback}
}

// Ports returns the sorted set of listening TCP ports. Loopback-bound
// listeners are included only when includeLoopback is set; ports in the
// exclude set (admin ports) are always removed. A failed or empty
// discovery falls back to the configured fixed list.
func (s *ListenSource) Ports(ctx context.Context, includeLoopback bool, exclude map[int]bool) []int {
	out, err := s.runner.Run(ctx, "ss", "-Hlnpt")
	ports := parseListenTable(out, includeLoopback)
	if err != nil || len(ports) == 0 {
		ports = nil
		for _, p := range s.Fallback {
			if !exclude[p] {
				ports = append(ports, p)
			}
		}
		return ports
	}

	filtered := ports[:0]
	for _, p := range ports {
		if !exclude[p] {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// parseListenTable extracts local ports from ss output. Each line looks
// like:
//
//	LISTEN 0 4096 0.0.0.0:22 0.0.0.0:* users:(("sshd",pid=712,fd=3))
//
// With -H there is no header; the local address is the fourth column
// (state included) and may be [::]:22, *:80 or 127.0.0.1:5432.
func parseListenTable(out string, includeLoopback bool) []int {
	seen := make(map[int]struct{})
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		local := fields[3]
		idx := strings.LastIndex(local, ":")
		if idx < 0 {
			continue
		}
		host, portStr := local[:idx], local[idx+1:]
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			continue
		}
		if !includeLoopback && netutil.IsLoopback(host) {
			continue
		}
		seen[port] = struct{}{}
	}

	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}
