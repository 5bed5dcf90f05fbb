// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package engine

import (
	"time"

	"grimm.is/lurewatch/internal/conntrack"
	"grimm.is/lurewatch/internal/logging"
	"grimm.is/lurewatch/internal/stats"
)

// Engine reconciles conntrack snapshots into tracked sessions and is
// the sole writer of the stats record. It is not goroutine-safe; the
// caller serializes Reconcile, view building, and toggle changes on a
// single logical timeline.
type Engine struct {
	sessions map[string]*Session
	rec      *stats.Record
	policy   *Policy
	toggles  Toggles
	logger   *logging.Logger

	// historyMinDuration is the shortest ended session worth keeping
	// in the longest-sessions history.
	historyMinDuration time.Duration
	historySize        int
}

// Options configure a new engine.
type Options struct {
	Policy             *Policy
	Toggles            Toggles
	HistoryMinDuration time.Duration
	HistorySize        int
}

// New returns an engine writing into rec.
func New(rec *stats.Record, opts Options) *Engine {
	return &Engine{
		sessions:           make(map[string]*Session),
		rec:                rec,
		policy:             opts.Policy,
		toggles:            opts.Toggles,
		logger:             logging.WithComponent("engine"),
		historyMinDuration: opts.HistoryMinDuration,
		historySize:        opts.HistorySize,
	}
}

// Cycle summarizes one reconcile pass.
type Cycle struct {
	Active int
	New    int
	Ended  int
}

// Reconcile folds one raw conntrack snapshot into the tracked set.
// Keys present in both stay tracked with first-seen preserved and
// last-seen refreshed. Keys seen for the first time count one lifetime
// hit on their destination port. Keys absent from the snapshot have
// ended; those whose duration reaches the history threshold are added
// to the longest-sessions history. The snapshot is taken as the raw
// table, so the tracked set always mirrors it exactly regardless of
// the current display toggles.
func (e *Engine) Reconcile(entries []conntrack.Entry, labels map[int]string, now time.Time) Cycle {
	var c Cycle
	seen := make(map[string]bool, len(entries))

	for i := range entries {
		ent := &entries[i]
		key := ent.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		if s, ok := e.sessions[key]; ok {
			s.State = ent.State
			s.TimeoutS = ent.TimeoutS
			s.LastSeen = now
			// A momentary gap in the container mapping keeps the last
			// seen name.
			if name := labels[s.DstPort]; name != "" {
				s.Container = name
			}
			continue
		}

		e.sessions[key] = &Session{
			Key:       key,
			Proto:     ent.Proto,
			SrcIP:     ent.SrcIP,
			SrcPort:   ent.SrcPort,
			DstIP:     ent.DstIP,
			DstPort:   ent.DstPort,
			State:     ent.State,
			TimeoutS:  ent.TimeoutS,
			FirstSeen: now,
			LastSeen:  now,
			Container: labels[ent.DstPort],
		}
		e.rec.IncrementPortHit(ent.DstPort)
		c.New++
	}

	for key, s := range e.sessions {
		if seen[key] {
			continue
		}
		delete(e.sessions, key)
		c.Ended++
		d := s.Duration()
		if d >= e.historyMinDuration {
			e.rec.AddEnded(stats.EndedSession{
				EndedAt:   now,
				SrcIP:     s.SrcIP,
				DstPort:   s.DstPort,
				Proto:     s.Proto,
				State:     s.State,
				DurationS: d.Seconds(),
				Container: s.Container,
			}, e.historySize)
		}
	}

	c.Active = len(e.sessions)
	if c.New > 0 || c.Ended > 0 {
		e.logger.Debug("reconciled", "active", c.Active, "new", c.New, "ended", c.Ended)
	}
	return c
}

// Toggles returns the current display toggles.
func (e *Engine) Toggles() Toggles { return e.toggles }

// SetToggles replaces the display toggles. Tracked sessions and
// lifetime counts are unaffected.
func (e *Engine) SetToggles(t Toggles) { e.toggles = t }

// Policy returns the filter policy.
func (e *Engine) Policy() *Policy { return e.policy }

// Record returns the stats record the engine writes into.
func (e *Engine) Record() *stats.Record { return e.rec }

// ActiveCount returns the size of the raw tracked set.
func (e *Engine) ActiveCount() int { return len(e.sessions) }

// VisibleCount returns how many tracked sessions pass the current
// toggles.
func (e *Engine) VisibleCount() int {
	n := 0
	for _, s := range e.sessions {
		if e.policy.Visible(s, e.toggles) {
			n++
		}
	}
	return n
}
