// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grimm.is/lurewatch/internal/sources"
	"grimm.is/lurewatch/internal/stats"
)

// TrafficModel shows the lifetime counters, the longest-ended-session
// history, and the container inventory.
type TrafficModel struct {
	Backend Backend
	Styles  Styles
	Table   table.Model

	TopPorts   []stats.PortHits
	History    []stats.EndedSession
	Containers []sources.Container
	Hints      map[string]bool
	Width      int
	Height     int
}

func NewTrafficModel(backend Backend, styles Styles) TrafficModel {
	columns := []table.Column{
		{Title: "Source", Width: 18},
		{Title: "Port", Width: 6},
		{Title: "State", Width: 12},
		{Title: "Duration", Width: 10},
		{Title: "Ended", Width: 20},
		{Title: "Container", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles(styles))

	return TrafficModel{
		Backend: backend,
		Styles:  styles,
		Table:   t,
	}
}

func (m TrafficModel) Refresh(time.Time) TrafficModel {
	m.TopPorts = m.Backend.TopPortHits(10)
	m.History = m.Backend.History()
	m.Containers = m.Backend.Containers()
	m.Hints = make(map[string]bool)
	for _, h := range m.Backend.Hints() {
		m.Hints[h] = true
	}

	rows := make([]table.Row, len(m.History))
	for i, e := range m.History {
		rows[i] = table.Row{
			e.SrcIP,
			strconv.Itoa(e.DstPort),
			e.State,
			formatAge(e.Duration()),
			e.EndedAt.Format("2006-01-02 15:04:05"),
			e.Container,
		}
	}
	m.Table.SetRows(rows)
	return m
}

func (m TrafficModel) Restyle(styles Styles) TrafficModel {
	m.Styles = styles
	m.Table.SetStyles(tableStyles(styles))
	return m
}

func (m TrafficModel) Resize(width, height int) TrafficModel {
	m.Width = width
	m.Height = height
	if height > 12 {
		m.Table.SetHeight(height - 12)
	}
	return m
}

func (m TrafficModel) Update(msg tea.Msg) (TrafficModel, tea.Cmd) {
	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m TrafficModel) View() string {
	hits := m.Styles.Card.Render(m.viewPortHits())
	containers := m.Styles.Card.Render(m.viewContainers())
	top := lipgloss.JoinHorizontal(lipgloss.Top, hits, containers)

	title := m.Styles.CardTitle.Render(fmt.Sprintf("Longest ended sessions (%d)", len(m.History)))
	history := m.Styles.Card.Render(title + "\n" + m.Table.View())

	return lipgloss.JoinVertical(lipgloss.Left, top, history)
}

func (m TrafficModel) viewPortHits() string {
	var b strings.Builder
	b.WriteString(m.Styles.CardTitle.Render("Lifetime port hits"))
	b.WriteString("\n")
	if len(m.TopPorts) == 0 {
		b.WriteString(m.Styles.Dim.Render("none yet"))
		return b.String()
	}
	var max uint64
	for _, ph := range m.TopPorts {
		if ph.Hits > max {
			max = ph.Hits
		}
	}
	for _, ph := range m.TopPorts {
		bar := hitBar(ph.Hits, max, 20)
		fmt.Fprintf(&b, ":%-6d %8d %s\n", ph.Port, ph.Hits, m.Styles.Good.Render(bar))
	}
	return strings.TrimRight(b.String(), "\n")
}

// hitBar scales a count against the maximum into a fixed-width bar.
func hitBar(hits, max uint64, width int) string {
	if max == 0 {
		return ""
	}
	n := int(hits * uint64(width) / max)
	if n == 0 && hits > 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func (m TrafficModel) viewContainers() string {
	var b strings.Builder
	b.WriteString(m.Styles.CardTitle.Render("Containers"))
	b.WriteString("\n")
	if len(m.Containers) == 0 {
		b.WriteString(m.Styles.Dim.Render("no container runtime data"))
		return b.String()
	}
	for _, c := range m.Containers {
		ports := c.Ports
		if ports == "" {
			ports = "-"
		}
		name := fmt.Sprintf("%-20s", c.Name)
		if m.Hints[c.Name] {
			// Known honeypot service.
			name = m.Styles.Good.Render(name)
		}
		fmt.Fprintf(&b, "%s %-28s %s\n", name, m.Styles.Dim.Render(c.Image), ports)
	}
	return strings.TrimRight(b.String(), "\n")
}
