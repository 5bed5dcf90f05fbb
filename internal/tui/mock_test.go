// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"time"

	"grimm.is/lurewatch/internal/engine"
	"grimm.is/lurewatch/internal/host"
	"grimm.is/lurewatch/internal/sources"
	"grimm.is/lurewatch/internal/stats"
	"grimm.is/lurewatch/internal/watch"
)

// MockBackend implements Backend for testing purposes
type MockBackend struct {
	CurrentView   *engine.View
	ActiveToggles engine.Toggles
	Watched       []int
	Override      bool
	ContainerList []sources.Container
	HintList      []string
	Host          host.Info
	PortHits      []stats.PortHits
	Ended         []stats.EndedSession
	NoteList      []string
	LoopStatus    watch.Status
	ThemeName     string
	Err           error

	SaveCalled  bool
	ResetCalled bool
}

func (m *MockBackend) View(now time.Time) *engine.View {
	if m.CurrentView == nil {
		return &engine.View{StateCounts: map[string]int{}, Now: now}
	}
	return m.CurrentView
}

func (m *MockBackend) Toggles() engine.Toggles        { return m.ActiveToggles }
func (m *MockBackend) SetToggles(t engine.Toggles)    { m.ActiveToggles = t }
func (m *MockBackend) WatchedPorts() []int            { return m.Watched }
func (m *MockBackend) OverrideActive() bool           { return m.Override }
func (m *MockBackend) Containers() []sources.Container { return m.ContainerList }
func (m *MockBackend) Hints() []string                { return m.HintList }
func (m *MockBackend) HostInfo() host.Info            { return m.Host }
func (m *MockBackend) TopPortHits(int) []stats.PortHits { return m.PortHits }
func (m *MockBackend) History() []stats.EndedSession  { return m.Ended }
func (m *MockBackend) Notes() []string                { return m.NoteList }
func (m *MockBackend) CurrentStatus() watch.Status    { return m.LoopStatus }
func (m *MockBackend) Theme() string                  { return m.ThemeName }
func (m *MockBackend) SetTheme(name string)           { m.ThemeName = name }

func (m *MockBackend) SaveNow() error {
	m.SaveCalled = true
	return m.Err
}

func (m *MockBackend) ResetLifetimeCounts() error {
	m.ResetCalled = true
	return m.Err
}
