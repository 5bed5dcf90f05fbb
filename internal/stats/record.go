// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package stats owns the durable aggregate state: lifetime per-port hit
// counts, the bounded longest-ended-session history, and engine metadata.
// The reconciliation engine is the only writer to the in-memory record;
// this package is the only place that touches the file on disk.
package stats

import (
	"sort"
	"strconv"
	"time"

	"grimm.is/lurewatch/internal/brand"
)

// EndedSession is the persisted summary of a long-lived session that has
// ended: the identity key minus the source port, its duration, and the
// container the destination port mapped to at the time.
type EndedSession struct {
	EndedAt   time.Time `json:"ended_at"`
	SrcIP     string    `json:"src"`
	DstPort   int       `json:"dport"`
	Proto     string    `json:"proto"`
	State     string    `json:"state"`
	DurationS float64   `json:"duration_s"`
	Container string    `json:"container,omitempty"`
}

// Duration returns the session duration as a time.Duration.
func (e EndedSession) Duration() time.Duration {
	return time.Duration(e.DurationS * float64(time.Second))
}

// rankKey orders equal durations deterministically.
func (e EndedSession) rankKey() string {
	return e.SrcIP + "/" + e.Proto + "/" + strconv.Itoa(e.DstPort)
}

// Record is the persisted stats document.
type Record struct {
	Version     string    `json:"version"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	EngineStart time.Time `json:"engine_start"`

	Resets    int       `json:"resets"`
	LastReset time.Time `json:"last_reset,omitzero"`

	// Notes records recoverable anomalies for operator visibility, e.g.
	// a previous stats file that could not be read.
	Notes []string `json:"notes"`

	Theme string `json:"theme,omitempty"`

	LifetimePortHits map[int]uint64 `json:"lifetime_port_hits"`
	EndedHistory     []EndedSession `json:"ended_history"`
}

// NewRecord returns a fresh, empty record.
func NewRecord(now time.Time) *Record {
	return &Record{
		Version:          brand.Version,
		Created:          now,
		Updated:          now,
		EngineStart:      now,
		Notes:            []string{},
		LifetimePortHits: make(map[int]uint64),
		EndedHistory:     []EndedSession{},
	}
}

// normalize repairs a record loaded from disk so every field is usable.
func (r *Record) normalize() {
	if r.LifetimePortHits == nil {
		r.LifetimePortHits = make(map[int]uint64)
	}
	if r.EndedHistory == nil {
		r.EndedHistory = []EndedSession{}
	}
	if r.Notes == nil {
		r.Notes = []string{}
	}
	r.Version = brand.Version
}

// IncrementPortHit counts one more distinct session observed on a port.
func (r *Record) IncrementPortHit(port int) {
	r.LifetimePortHits[port]++
}

// AddNote appends an operator-visible note.
func (r *Record) AddNote(note string) {
	r.Notes = append(r.Notes, note)
}

// AddEnded inserts an ended-session summary into the duration-ranked
// history, keeping at most capacity entries. On overflow the shortest
// entry is evicted; equal durations keep a stable order by source and
// port so the outcome is reproducible.
func (r *Record) AddEnded(e EndedSession, capacity int) {
	if capacity <= 0 {
		return
	}
	r.EndedHistory = append(r.EndedHistory, e)
	sort.SliceStable(r.EndedHistory, func(i, j int) bool {
		a, b := r.EndedHistory[i], r.EndedHistory[j]
		if a.DurationS != b.DurationS {
			return a.DurationS > b.DurationS
		}
		return a.rankKey() < b.rankKey()
	})
	if len(r.EndedHistory) > capacity {
		r.EndedHistory = r.EndedHistory[:capacity]
	}
}

// ResetLifetimeCounts zeroes the per-port lifetime counters and stamps
// the reset in metadata. History and notes are deliberately untouched.
func (r *Record) ResetLifetimeCounts(now time.Time) {
	r.LifetimePortHits = make(map[int]uint64)
	r.Resets++
	r.LastReset = now
}

// TopPortHits returns up to n (port, count) pairs ranked by lifetime
// count, ties broken by port number.
func (r *Record) TopPortHits(n int) []PortHits {
	items := make([]PortHits, 0, len(r.LifetimePortHits))
	for p, c := range r.LifetimePortHits {
		items = append(items, PortHits{Port: p, Hits: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Hits != items[j].Hits {
			return items[i].Hits > items[j].Hits
		}
		return items[i].Port < items[j].Port
	})
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items
}

// PortHits pairs a port with its lifetime hit count.
type PortHits struct {
	Port int
	Hits uint64
}
