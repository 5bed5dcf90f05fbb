// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package sources

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Container is one running container as listed by the runtime.
type Container struct {
	Name  string
	Image string
	Ports string
}

// PortMap maps a host port to the container name publishing it. An
// absent entry means no correlation; callers treat that as enrichment
// that simply is not there, never as an error.
type PortMap map[int]string

// Lookup returns the container name for a host port, if any.
func (m PortMap) Lookup(port int) (string, bool) {
	name, ok := m[port]
	return name, ok
}

// hintNames are honeypot services worth calling out in the UI when their
// container is present.
var hintNames = []string{
	"endlessh", "heralding", "ddospot", "suricata", "p0f", "cowrie", "nginx",
}

// DockerSource lists running containers and their published host ports.
// Results are cached and refreshed at a fixed interval: container churn
// is far slower than the poll loop, and `docker ps` is not free.
type DockerSource struct {
	runner  Runner
	refresh time.Duration

	mu         sync.Mutex
	last       time.Time
	containers []Container
	portMap    PortMap
	hints      []string
}

// NewDockerSource creates a source refreshing at the given interval.
func NewDockerSource(runner Runner, refresh time.Duration) *DockerSource {
	return &DockerSource{
		runner:  runner,
		refresh: refresh,
		portMap: PortMap{},
	}
}

// Refresh updates the cache if it is stale. Failure to reach the runtime
// leaves the previous cache in place; a host without docker just keeps an
// empty mapping.
func (s *DockerSource) Refresh(ctx context.Context, now time.Time) {
	s.mu.Lock()
	if now.Sub(s.last) < s.refresh && !s.last.IsZero() {
		s.mu.Unlock()
		return
	}
	s.last = now
	s.mu.Unlock()

	out, err := s.runner.Run(ctx, "docker", "ps", "--format", "{{.Names}}\t{{.Image}}\t{{.Ports}}")
	if err != nil {
		return
	}
	containers, portMap := parseContainerTable(out)

	s.mu.Lock()
	s.containers = containers
	s.portMap = portMap
	s.hints = matchHints(containers)
	s.mu.Unlock()
}

// PortMap returns the current host-port to container-name mapping.
func (s *DockerSource) PortMap() PortMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := make(PortMap, len(s.portMap))
	for k, v := range s.portMap {
		m[k] = v
	}
	return m
}

// Containers returns the cached container list.
func (s *DockerSource) Containers() []Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Container(nil), s.containers...)
}

// Hints returns the honeypot services detected among running containers.
func (s *DockerSource) Hints() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.hints...)
}

var (
	rePortRange  = regexp.MustCompile(`:(\d+)-(\d+)->`)
	rePortSingle = regexp.MustCompile(`:(\d+)->`)
)

// parseContainerTable parses `docker ps` tab-separated output. Published
// ports look like "0.0.0.0:22->2222/tcp, :::22->2222/tcp" or
// "0.0.0.0:80-81->80-81/tcp"; both single ports and ranges map each host
// port to the container name.
func parseContainerTable(out string) ([]Container, PortMap) {
	var containers []Container
	portMap := PortMap{}

	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		c := Container{
			Name:  strings.TrimSpace(parts[0]),
			Image: strings.TrimSpace(parts[1]),
		}
		if c.Name == "" {
			continue
		}
		if len(parts) >= 3 {
			c.Ports = strings.TrimSpace(parts[2])
		}
		containers = append(containers, c)

		for _, tok := range strings.Split(c.Ports, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if m := rePortRange.FindStringSubmatch(tok); m != nil {
				lo, _ := strconv.Atoi(m[1])
				hi, _ := strconv.Atoi(m[2])
				if hi < lo {
					lo, hi = hi, lo
				}
				for p := lo; p <= hi; p++ {
					portMap[p] = c.Name
				}
				continue
			}
			if m := rePortSingle.FindStringSubmatch(tok); m != nil {
				p, _ := strconv.Atoi(m[1])
				portMap[p] = c.Name
			}
		}
	}
	return containers, portMap
}

func matchHints(containers []Container) []string {
	var names []string
	for _, c := range containers {
		names = append(names, strings.ToLower(c.Name))
	}
	joined := strings.Join(names, " ")

	var present []string
	for _, h := range hintNames {
		if strings.Contains(joined, h) {
			present = append(present, h)
		}
	}
	return present
}
