// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package engine

import (
	"sort"
	"time"
)

// SourceStat aggregates the visible sessions of one source address.
type SourceStat struct {
	IP        string
	Active    int
	OldestAge time.Duration
	Ports     []int
	States    map[string]int
}

// PortCount is the number of visible active sessions on one port.
type PortCount struct {
	Port      int
	Active    int
	Container string
}

// View is a consistent, filter-applied picture of the tracked set,
// built for one moment in time. Slices are freshly allocated copies;
// callers may hold them across cycles.
type View struct {
	// Sessions holds the visible sessions, ESTABLISHED first, then by
	// age descending, key ascending on ties.
	Sessions []*Session
	// TopSources ranks source addresses by active session count.
	TopSources []SourceStat
	// PortActive counts visible sessions per destination port.
	PortActive []PortCount
	// StateCounts tallies visible sessions by TCP state.
	StateCounts map[string]int

	RawActive int
	Toggles   Toggles
	Now       time.Time
}

// BuildView applies the current toggles to the tracked set and derives
// the rankings. All ordering is deterministic: every comparison falls
// back to the session key or port number so equal inputs produce equal
// output.
func (e *Engine) BuildView(now time.Time, topN int) *View {
	v := &View{
		StateCounts: make(map[string]int),
		RawActive:   len(e.sessions),
		Toggles:     e.toggles,
		Now:         now,
	}

	for _, s := range e.sessions {
		if !e.policy.Visible(s, e.toggles) {
			continue
		}
		cp := *s
		v.Sessions = append(v.Sessions, &cp)
		v.StateCounts[s.State]++
	}

	sort.Slice(v.Sessions, func(i, j int) bool {
		a, b := v.Sessions[i], v.Sessions[j]
		if a.Established() != b.Established() {
			return a.Established()
		}
		ageA, ageB := a.Age(now), b.Age(now)
		if ageA != ageB {
			return ageA > ageB
		}
		return a.Key < b.Key
	})

	v.TopSources = topSources(v.Sessions, now, topN)
	v.PortActive = portActive(v.Sessions)
	return v
}

func topSources(sessions []*Session, now time.Time, n int) []SourceStat {
	byIP := make(map[string]*SourceStat)
	for _, s := range sessions {
		st, ok := byIP[s.SrcIP]
		if !ok {
			st = &SourceStat{IP: s.SrcIP, States: make(map[string]int)}
			byIP[s.SrcIP] = st
		}
		st.Active++
		st.States[s.State]++
		if age := s.Age(now); age > st.OldestAge {
			st.OldestAge = age
		}
		if !containsInt(st.Ports, s.DstPort) {
			st.Ports = append(st.Ports, s.DstPort)
		}
	}

	out := make([]SourceStat, 0, len(byIP))
	for _, st := range byIP {
		sort.Ints(st.Ports)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active > out[j].Active
		}
		if out[i].OldestAge != out[j].OldestAge {
			return out[i].OldestAge > out[j].OldestAge
		}
		return out[i].IP < out[j].IP
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func portActive(sessions []*Session) []PortCount {
	byPort := make(map[int]*PortCount)
	for _, s := range sessions {
		pc, ok := byPort[s.DstPort]
		if !ok {
			pc = &PortCount{Port: s.DstPort, Container: s.Container}
			byPort[s.DstPort] = pc
		}
		pc.Active++
		if pc.Container == "" {
			pc.Container = s.Container
		}
	}
	out := make([]PortCount, 0, len(byPort))
	for _, pc := range byPort {
		out = append(out, *pc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active > out[j].Active
		}
		return out[i].Port < out[j].Port
	})
	return out
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
