// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package sources

import (
	"context"
	"sync"

	ct "github.com/ti-mo/conntrack"

	"grimm.is/lurewatch/internal/conntrack"
	"grimm.is/lurewatch/internal/logging"
)

// ConntrackSource produces connection-table snapshots. It prefers a
// netlink dump (no subprocess, no text round-trip) and falls back to
// executing conntrack(8) when the netlink socket cannot be used, e.g.
// when not running as root.
type ConntrackSource struct {
	runner Runner
	logger *logging.Logger

	mu         sync.Mutex
	conn       *ct.Conn
	netlinkOff bool
}

// NewConntrackSource creates a source using the given command runner.
func NewConntrackSource(runner Runner) *ConntrackSource {
	return &ConntrackSource{
		runner: runner,
		logger: logging.WithComponent("conntrack"),
	}
}

// NewExecConntrackSource creates a source that only shells out to
// conntrack(8), never touching netlink.
func NewExecConntrackSource(runner Runner) *ConntrackSource {
	s := NewConntrackSource(runner)
	s.netlinkOff = true
	return s
}

// Snapshot returns the current TCP connection-table entries for watched
// destination ports. Any failure yields an empty snapshot together with
// the error; the caller treats that as "no active sessions this cycle".
func (s *ConntrackSource) Snapshot(ctx context.Context, watched map[int]bool) ([]conntrack.Entry, error) {
	if flows, ok := s.dumpNetlink(); ok {
		return conntrack.FromFlows(flows, watched), nil
	}

	out, err := s.runner.Run(ctx, "conntrack", "-L", "-p", "tcp")
	if err != nil {
		return nil, err
	}
	return conntrack.ParseTable(out, watched), nil
}

// dumpNetlink attempts a netlink dump, dialing lazily. A dial failure
// disables the netlink path for the rest of the process; a dump failure
// drops the connection and retries next cycle.
func (s *ConntrackSource) dumpNetlink() ([]ct.Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.netlinkOff {
		return nil, false
	}
	if s.conn == nil {
		conn, err := ct.Dial(nil)
		if err != nil {
			s.logger.Debug("netlink unavailable, using conntrack tool", "error", err)
			s.netlinkOff = true
			return nil, false
		}
		s.conn = conn
	}

	flows, err := s.conn.Dump(nil)
	if err != nil {
		s.logger.Warn("netlink dump failed", "error", err)
		s.conn.Close()
		s.conn = nil
		return nil, false
	}
	return flows, true
}

// Close releases the netlink socket if one was opened.
func (s *ConntrackSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}
