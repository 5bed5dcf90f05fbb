// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package watch

import (
	"time"

	"grimm.is/lurewatch/internal/engine"
	"grimm.is/lurewatch/internal/host"
	"grimm.is/lurewatch/internal/sources"
	"grimm.is/lurewatch/internal/stats"
)

// Status reports the health of the poll loop for the header line.
type Status struct {
	Active    int
	RawActive int
	LastCycle engine.Cycle
	LastSaved time.Time
	SourceErr string
	SaveErr   string
	Started   time.Time
	Resets    int
}

// View builds a filter-applied view of the tracked set.
func (s *Service) View(now time.Time) *engine.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.BuildView(now, s.cfg.TopN)
}

// Toggles returns the current display toggles.
func (s *Service) Toggles() engine.Toggles {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Toggles()
}

// SetToggles replaces the display toggles.
func (s *Service) SetToggles(t engine.Toggles) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.SetToggles(t)
}

// WatchedPorts returns the watched set from the last cycle.
func (s *Service) WatchedPorts() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.watched))
	copy(out, s.watched)
	return out
}

// OverrideActive reports whether the watched set is pinned by config.
func (s *Service) OverrideActive() bool {
	return s.overridePorts != nil
}

// Containers returns the last container inventory.
func (s *Service) Containers() []sources.Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sources.Container, len(s.containers))
	copy(out, s.containers)
	return out
}

// Hints returns the honeypot container names recognized in the
// current inventory.
func (s *Service) Hints() []string {
	return s.docker.Hints()
}

// HostInfo returns the last host vitals sample.
func (s *Service) HostInfo() host.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostInfo
}

// TopPortHits returns the lifetime hit ranking.
func (s *Service) TopPortHits(n int) []stats.PortHits {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Record().TopPortHits(n)
}

// History returns a copy of the longest-ended-session history.
func (s *Service) History() []stats.EndedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.eng.Record()
	out := make([]stats.EndedSession, len(rec.EndedHistory))
	copy(out, rec.EndedHistory)
	return out
}

// Notes returns the operator notes carried in the record.
func (s *Service) Notes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.eng.Record()
	out := make([]string, len(rec.Notes))
	copy(out, rec.Notes)
	return out
}

// ResetLifetimeCounts zeroes the per-port counters and saves right
// away so a crash cannot resurrect them.
func (s *Service) ResetLifetimeCounts() error {
	s.mu.Lock()
	now := time.Now()
	s.eng.Record().ResetLifetimeCounts(now)
	snap := s.renderSnapshot(now)
	err := s.store.Save(s.eng.Record(), snap, now)
	if err == nil {
		s.lastSaved = now
		s.saveErr = ""
	} else {
		s.saveErr = err.Error()
	}
	s.mu.Unlock()
	return err
}

// Theme returns the persisted theme name, empty when unset.
func (s *Service) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Record().Theme
}

// SetTheme records the theme choice; it is persisted on the next save.
func (s *Service) SetTheme(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.Record().Theme = name
}

// CurrentStatus summarizes loop health for the header.
func (s *Service) CurrentStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.eng.Record()
	return Status{
		Active:    s.eng.VisibleCount(),
		RawActive: s.eng.ActiveCount(),
		LastCycle: s.lastCycle,
		LastSaved: s.lastSaved,
		SourceErr: s.cycleErr,
		SaveErr:   s.saveErr,
		Started:   rec.EngineStart,
		Resets:    rec.Resets,
	}
}
