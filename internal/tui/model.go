// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tui renders the live monitor: active sessions, rankings,
// container inventory, watched ports, and host vitals, with toggles to
// shape the view. It never touches the engine directly; everything goes
// through the Backend interface.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grimm.is/lurewatch/internal/brand"
	"grimm.is/lurewatch/internal/engine"
	"grimm.is/lurewatch/internal/host"
	"grimm.is/lurewatch/internal/sources"
	"grimm.is/lurewatch/internal/stats"
	"grimm.is/lurewatch/internal/watch"
)

// View represents the currently active screen
type View int

const (
	ViewSessions View = iota
	ViewTraffic
	ViewPorts
	ViewSystem
)

const viewCount = 4

// Backend defines the interface for data retrieval and actions.
type Backend interface {
	View(now time.Time) *engine.View
	Toggles() engine.Toggles
	SetToggles(engine.Toggles)
	WatchedPorts() []int
	OverrideActive() bool
	Containers() []sources.Container
	Hints() []string
	HostInfo() host.Info
	TopPortHits(n int) []stats.PortHits
	History() []stats.EndedSession
	Notes() []string
	CurrentStatus() watch.Status
	SaveNow() error
	ResetLifetimeCounts() error
	Theme() string
	SetTheme(name string)
}

// TickMsg drives the once-per-second refresh.
type TickMsg time.Time

// Model is the main application state
type Model struct {
	Backend Backend

	ActiveView View
	Width      int
	Height     int
	ShowHelp   bool

	Theme  Theme
	Styles Styles

	// LastAction is the one-line feedback shown in the footer after a
	// key action (save, reset, toggle).
	LastAction string

	Sessions SessionsModel
	Traffic  TrafficModel
	Ports    PortsModel
	System   SystemModel
}

// NewModel creates a new initial model
func NewModel(backend Backend) Model {
	theme := ThemeByName(backend.Theme())
	styles := NewStyles(theme)
	return Model{
		Backend:    backend,
		ActiveView: ViewSessions,
		Theme:      theme,
		Styles:     styles,
		Sessions:   NewSessionsModel(backend, styles),
		Traffic:    NewTrafficModel(backend, styles),
		Ports:      NewPortsModel(backend, styles),
		System:     NewSystemModel(backend, styles),
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(refresh(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// refresh emits one TickMsg immediately so the next frame has data.
func refresh() tea.Cmd {
	return func() tea.Msg { return TickMsg(time.Now()) }
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		now := time.Time(msg)
		m.Sessions = m.Sessions.Refresh(now)
		m.Traffic = m.Traffic.Refresh(now)
		m.Ports = m.Ports.Refresh(now)
		m.System = m.System.Refresh(now)
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Sessions = m.Sessions.Resize(msg.Width, msg.Height)
		m.Traffic = m.Traffic.Resize(msg.Width, msg.Height)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "h", "?":
		m.ShowHelp = !m.ShowHelp
		return m, nil

	case "tab":
		m.ActiveView = (m.ActiveView + 1) % viewCount
		return m, nil
	case "1":
		m.ActiveView = ViewSessions
		return m, nil
	case "2":
		m.ActiveView = ViewTraffic
		return m, nil
	case "3":
		m.ActiveView = ViewPorts
		return m, nil
	case "4":
		m.ActiveView = ViewSystem
		return m, nil

	case "p":
		t := m.Backend.Toggles()
		t.HidePrivate = !t.HidePrivate
		m.Backend.SetToggles(t)
		m.LastAction = toggleLine("hide private sources", t.HidePrivate)
		return m, refresh()
	case "a":
		t := m.Backend.Toggles()
		t.HideAdmin = !t.HideAdmin
		m.Backend.SetToggles(t)
		m.LastAction = toggleLine("hide admin ports", t.HideAdmin)
		return m, refresh()
	case "l":
		t := m.Backend.Toggles()
		t.IncludeLoopback = !t.IncludeLoopback
		m.Backend.SetToggles(t)
		m.LastAction = toggleLine("include loopback listeners", t.IncludeLoopback)
		return m, refresh()
	case "e":
		t := m.Backend.Toggles()
		t.EstablishedOnly = !t.EstablishedOnly
		m.Backend.SetToggles(t)
		if t.EstablishedOnly {
			m.LastAction = "showing ESTABLISHED only"
		} else {
			m.LastAction = "showing all tracked states"
		}
		return m, refresh()

	case "s":
		if err := m.Backend.SaveNow(); err != nil {
			m.LastAction = "save failed: " + err.Error()
		} else {
			m.LastAction = "state saved"
		}
		return m, refresh()
	case "r":
		if err := m.Backend.ResetLifetimeCounts(); err != nil {
			m.LastAction = "reset failed: " + err.Error()
		} else {
			m.LastAction = "lifetime counters reset"
		}
		return m, refresh()

	case "t":
		m.Theme = NextTheme(m.Theme.Name)
		m.Styles = NewStyles(m.Theme)
		m.Backend.SetTheme(m.Theme.Name)
		m.Sessions = m.Sessions.Restyle(m.Styles)
		m.Traffic = m.Traffic.Restyle(m.Styles)
		m.Ports = m.Ports.Restyle(m.Styles)
		m.System = m.System.Restyle(m.Styles)
		m.LastAction = "theme: " + m.Theme.Name
		return m, nil
	}

	// Delegate navigation keys to the active table view.
	var cmd tea.Cmd
	switch m.ActiveView {
	case ViewSessions:
		m.Sessions, cmd = m.Sessions.Update(msg)
	case ViewTraffic:
		m.Traffic, cmd = m.Traffic.Update(msg)
	}
	return m, cmd
}

func toggleLine(what string, on bool) string {
	if on {
		return what + ": on"
	}
	return what + ": off"
}

// View renders the application
func (m Model) View() string {
	if m.ShowHelp {
		return m.Styles.App.Render(m.viewTopBar() + "\n" + m.viewHelp())
	}

	doc := m.viewTopBar() + "\n"
	switch m.ActiveView {
	case ViewSessions:
		doc += m.Sessions.View()
	case ViewTraffic:
		doc += m.Traffic.View()
	case ViewPorts:
		doc += m.Ports.View()
	case ViewSystem:
		doc += m.System.View()
	}
	doc += "\n" + m.viewFooter()
	return m.Styles.App.Render(doc)
}

// viewTopBar renders the navigation menu and loop status.
func (m Model) viewTopBar() string {
	menus := []struct {
		View  View
		Label string
		Key   string
	}{
		{ViewSessions, "Sessions", "1"},
		{ViewTraffic, "Traffic", "2"},
		{ViewPorts, "Ports", "3"},
		{ViewSystem, "Host", "4"},
	}

	items := []string{m.Styles.Title.Render(brand.Name + " ")}
	for _, menu := range menus {
		key := m.Styles.MenuKey.Render("[" + menu.Key + "]")
		if m.ActiveView == menu.View {
			items = append(items, m.Styles.MenuOn.Render(key+" "+menu.Label))
		} else {
			items = append(items, m.Styles.MenuItem.Render(key+" "+menu.Label))
		}
	}

	status := m.Backend.CurrentStatus()
	right := fmt.Sprintf("active %d", status.Active)
	if status.SourceErr != "" {
		right = m.Styles.Bad.Render("degraded") + " " + right
	}
	if status.SaveErr != "" {
		right = m.Styles.Bad.Render("save failed") + " " + right
	}
	items = append(items, m.Styles.Dim.Render("  "+right))

	return m.Styles.TopBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, items...))
}

func (m Model) viewFooter() string {
	t := m.Backend.Toggles()
	line := fmt.Sprintf("[p]rivate:%s [a]dmin:%s [l]oopback:%s [e]stablished:%s [s]ave [r]eset [t]heme [h]elp [q]uit",
		onOff(t.HidePrivate), onOff(t.HideAdmin), onOff(t.IncludeLoopback), onOff(t.EstablishedOnly))
	if m.LastAction != "" {
		line += "\n" + m.Styles.Warn.Render(m.LastAction)
	}
	return m.Styles.Footer.Render(line)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) viewHelp() string {
	help := `Keys

  1-4, tab   switch view
  p          hide/show private (RFC1918, link-local) sources
  a          hide/show admin management ports
  l          include/exclude loopback listeners in port discovery
  e          toggle ESTABLISHED-only mode
  s          save state now
  r          reset lifetime hit counters (history is kept)
  t          cycle color theme
  h, ?       toggle this help
  q, ctrl+c  quit (state is saved on exit)

Filters change what is displayed, never what is counted.`
	return m.Styles.Card.Render(help)
}
