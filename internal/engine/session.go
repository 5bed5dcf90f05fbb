// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package engine tracks the live connection set across poll cycles. It
// reconciles each raw conntrack snapshot against the previous one,
// detecting new and ended sessions, counting lifetime hits, and feeding
// the long-session history. Tracking always runs on the unfiltered set;
// the display filter is applied only when views are built, so toggling
// a filter can never change what gets counted.
package engine

import (
	"time"

	"grimm.is/lurewatch/internal/conntrack"
)

// Session is one tracked connection. Identity is the conntrack key
// (proto, source address, source port, destination port); everything
// else may change between cycles.
type Session struct {
	Key     string
	Proto   string
	SrcIP   string
	SrcPort int
	DstIP   string
	DstPort int

	State    string
	TimeoutS int

	FirstSeen time.Time
	LastSeen  time.Time

	// Container is the correlated container name for the destination
	// port, refreshed each cycle; empty when no container maps to it.
	Container string
}

// Age returns how long the session has been tracked. A clock that
// stepped backwards clamps to zero rather than going negative.
func (s *Session) Age(now time.Time) time.Duration {
	d := now.Sub(s.FirstSeen)
	if d < 0 {
		return 0
	}
	return d
}

// Duration returns last seen minus first seen, clamped to zero.
func (s *Session) Duration() time.Duration {
	d := s.LastSeen.Sub(s.FirstSeen)
	if d < 0 {
		return 0
	}
	return d
}

// Established reports whether the session is in the ESTABLISHED state.
func (s *Session) Established() bool {
	return s.State == conntrack.StateEstablished
}
