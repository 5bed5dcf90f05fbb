// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package conntrack

import (
	"strconv"
	"strings"
)

// ParseTable parses the text output of `conntrack -L -p tcp` into entries,
// keeping only rows whose destination port is in the watched set. Rows for
// unwatched ports are irrelevant to every downstream consumer and would
// pollute the rankings, so they are dropped here.
func ParseTable(out string, watched map[int]bool) []Entry {
	var entries []Entry
	for _, line := range strings.Split(out, "\n") {
		e, ok := ParseLine(line)
		if !ok {
			continue
		}
		if !watched[e.DstPort] {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// ParseLine parses a single conntrack text line:
//
//	tcp      6 431999 ESTABLISHED src=1.2.3.4 dst=5.6.7.8 sport=54321 dport=80 \
//	    src=5.6.7.8 dst=1.2.3.4 sport=80 dport=54321 [ASSURED] mark=0 use=1
//
// Only the original-direction tuple (first occurrence of each key) matters
// here; the reply tuple and trailing flags are ignored. The second return
// is false for lines that do not carry a usable TCP tuple.
func ParseLine(line string) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[0] != "tcp" {
		return Entry{}, false
	}

	e := Entry{Proto: "tcp"}

	// Positional: "tcp <protonum> <timeout> <STATE>".
	if n, err := strconv.Atoi(fields[2]); err == nil {
		e.TimeoutS = n
	}
	state := fields[3]
	if !isStateToken(state) {
		return Entry{}, false
	}
	e.State = state

	for _, f := range fields[4:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		// First occurrence wins: the original direction comes first.
		switch k {
		case "src":
			if e.SrcIP == "" {
				e.SrcIP = v
			}
		case "dst":
			if e.DstIP == "" {
				e.DstIP = v
			}
		case "sport":
			if e.SrcPort == 0 {
				e.SrcPort = parsePortValue(v)
			}
		case "dport":
			if e.DstPort == 0 {
				e.DstPort = parsePortValue(v)
			}
		}
	}

	if e.SrcIP == "" || e.DstIP == "" || e.SrcPort == 0 || e.DstPort == 0 {
		return Entry{}, false
	}
	return e, true
}

func parsePortValue(s string) int {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		return 0
	}
	return p
}

func isStateToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && r != '_' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
