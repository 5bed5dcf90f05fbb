// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package conntrack parses point-in-time dumps of the kernel connection
// table into structured entries. It accepts both the text output of the
// conntrack(8) tool and netlink dumps, and knows nothing about session
// tracking: one dump in, one slice of entries out.
//
// Parsing is deliberately tolerant. A malformed line is skipped on its
// own; a completely unparsable dump yields an empty slice, never an
// error, so the engine degrades to "no active sessions this cycle".
package conntrack

import "fmt"

// Entry is one row of the connection table, reduced to the fields the
// tracking engine needs.
type Entry struct {
	Proto    string // "tcp"
	State    string // ESTABLISHED, SYN_SENT, TIME_WAIT, ...
	SrcIP    string
	SrcPort  int
	DstIP    string
	DstPort  int
	TimeoutS int // kernel entry timeout, seconds
}

// Key returns the session identity: source address, source port,
// destination port and protocol. Two observations with equal keys are the
// same session for reconciliation purposes.
func (e Entry) Key() string {
	return fmt.Sprintf("%s/%s:%d->%d", e.Proto, e.SrcIP, e.SrcPort, e.DstPort)
}

// Established reports whether the entry is in the ESTABLISHED state.
func (e Entry) Established() bool {
	return e.State == StateEstablished
}

// Connection states as reported by the kernel's TCP tracker.
const (
	StateNone        = "NONE"
	StateSynSent     = "SYN_SENT"
	StateSynRecv     = "SYN_RECV"
	StateEstablished = "ESTABLISHED"
	StateFinWait     = "FIN_WAIT"
	StateCloseWait   = "CLOSE_WAIT"
	StateLastAck     = "LAST_ACK"
	StateTimeWait    = "TIME_WAIT"
	StateClose       = "CLOSE"
)

// tcpStateNames maps the kernel's numeric TCP conntrack states, as seen
// on the netlink path, to the names the text dump uses.
var tcpStateNames = map[uint8]string{
	0: StateNone,
	1: StateSynSent,
	2: StateSynRecv,
	3: StateEstablished,
	4: StateFinWait,
	5: StateCloseWait,
	6: StateLastAck,
	7: StateTimeWait,
	8: StateClose,
	9: StateSynSent, // simultaneous open, reported as SYN_SENT2 by the tool
}

// TCPStateName returns the textual name for a numeric TCP tracking state.
func TCPStateName(s uint8) string {
	if name, ok := tcpStateNames[s]; ok {
		return name
	}
	return StateNone
}
