// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"grimm.is/lurewatch/internal/engine"
)

// PortsModel shows the watched-port set, per-port activity, and any
// operator notes carried in the stats record.
type PortsModel struct {
	Backend Backend
	Styles  Styles

	Watched  []int
	Override bool
	Current  *engine.View
	Notes    []string
}

func NewPortsModel(backend Backend, styles Styles) PortsModel {
	return PortsModel{Backend: backend, Styles: styles}
}

func (m PortsModel) Refresh(now time.Time) PortsModel {
	m.Watched = m.Backend.WatchedPorts()
	m.Override = m.Backend.OverrideActive()
	m.Current = m.Backend.View(now)
	m.Notes = m.Backend.Notes()
	return m
}

func (m PortsModel) Restyle(styles Styles) PortsModel {
	m.Styles = styles
	return m
}

func (m PortsModel) View() string {
	watched := m.Styles.Card.Render(m.viewWatched())
	active := m.Styles.Card.Render(m.viewActive())
	doc := lipgloss.JoinHorizontal(lipgloss.Top, watched, active)

	if len(m.Notes) > 0 {
		doc = lipgloss.JoinVertical(lipgloss.Left, doc, m.Styles.Card.Render(m.viewNotes()))
	}
	return doc
}

func (m PortsModel) viewWatched() string {
	var b strings.Builder
	source := "derived from listeners"
	if m.Override {
		source = "pinned by config"
	}
	b.WriteString(m.Styles.CardTitle.Render(fmt.Sprintf("Watched ports (%d)", len(m.Watched))))
	b.WriteString("\n" + m.Styles.Dim.Render(source) + "\n")
	if len(m.Watched) == 0 {
		b.WriteString(m.Styles.Bad.Render("none"))
		return b.String()
	}
	line := make([]string, 0, 8)
	for i, p := range m.Watched {
		line = append(line, strconv.Itoa(p))
		if (i+1)%8 == 0 || i == len(m.Watched)-1 {
			b.WriteString(strings.Join(line, "  ") + "\n")
			line = line[:0]
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m PortsModel) viewActive() string {
	var b strings.Builder
	b.WriteString(m.Styles.CardTitle.Render("Active by port"))
	b.WriteString("\n")
	if m.Current == nil || len(m.Current.PortActive) == 0 {
		b.WriteString(m.Styles.Dim.Render("no visible sessions"))
		return b.String()
	}
	for _, pc := range m.Current.PortActive {
		fmt.Fprintf(&b, ":%-6d %4d  %s\n", pc.Port, pc.Active, pc.Container)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m PortsModel) viewNotes() string {
	var b strings.Builder
	b.WriteString(m.Styles.CardTitle.Render("Notes"))
	b.WriteString("\n")
	for _, n := range m.Notes {
		b.WriteString(m.Styles.Warn.Render(n) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
