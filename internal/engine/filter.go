// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package engine

import (
	"grimm.is/lurewatch/internal/netutil"
)

// Toggles are the operator-flippable display filters. They shape what
// the views show; they never affect tracking or counting.
type Toggles struct {
	// HidePrivate drops sessions whose source address is in a private
	// or link-local range.
	HidePrivate bool
	// HideAdmin drops sessions destined to management ports.
	HideAdmin bool
	// IncludeLoopback widens watched-port derivation to loopback-bound
	// listeners.
	IncludeLoopback bool
	// EstablishedOnly restricts the view to ESTABLISHED sessions.
	EstablishedOnly bool
}

// DefaultToggles hides private sources and admin ports, matching the
// honeypot use case of watching outside traffic.
func DefaultToggles() Toggles {
	return Toggles{HidePrivate: true, HideAdmin: true}
}

// Policy evaluates the display filter. It holds the static sets the
// toggles consult; the toggles themselves live on the engine so they
// can flip at runtime.
type Policy struct {
	admin   map[int]bool
	private *netutil.PrefixSet
}

// NewPolicy builds a policy from the admin port list and private CIDR
// ranges. Unparsable ranges are dropped by the prefix set.
func NewPolicy(adminPorts []int, privateRanges []string) *Policy {
	admin := make(map[int]bool, len(adminPorts))
	for _, p := range adminPorts {
		admin[p] = true
	}
	return &Policy{
		admin:   admin,
		private: netutil.NewPrefixSet(privateRanges),
	}
}

// AdminPort reports whether port is a management port.
func (p *Policy) AdminPort(port int) bool { return p.admin[port] }

// Visible reports whether a session passes the filter under the given
// toggles. The decision is a pure function of the session and the
// toggles; evaluating it has no side effects on tracking state.
func (p *Policy) Visible(s *Session, t Toggles) bool {
	if t.EstablishedOnly && !s.Established() {
		return false
	}
	if t.HideAdmin && p.admin[s.DstPort] {
		return false
	}
	if t.HidePrivate && p.private.Contains(s.SrcIP) {
		return false
	}
	return true
}
