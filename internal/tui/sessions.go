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

	"grimm.is/lurewatch/internal/engine"
)

// SessionsModel is the main screen: the live session table plus the
// top-sources ranking next to it.
type SessionsModel struct {
	Backend Backend
	Styles  Styles
	Table   table.Model

	Current *engine.View
	Now     time.Time
	Width   int
	Height  int
}

func NewSessionsModel(backend Backend, styles Styles) SessionsModel {
	columns := []table.Column{
		{Title: "Source", Width: 18},
		{Title: "SPort", Width: 6},
		{Title: "Port", Width: 6},
		{Title: "State", Width: 12},
		{Title: "Age", Width: 8},
		{Title: "Container", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
	)
	t.SetStyles(tableStyles(styles))

	return SessionsModel{
		Backend: backend,
		Styles:  styles,
		Table:   t,
	}
}

func tableStyles(styles Styles) table.Styles {
	s := table.DefaultStyles()
	s.Header = styles.TableHead.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)
	s.Selected = styles.TableSel
	return s
}

// Refresh pulls a fresh view from the backend.
func (m SessionsModel) Refresh(now time.Time) SessionsModel {
	m.Now = now
	m.Current = m.Backend.View(now)

	rows := make([]table.Row, len(m.Current.Sessions))
	for i, s := range m.Current.Sessions {
		rows[i] = table.Row{
			s.SrcIP,
			strconv.Itoa(s.SrcPort),
			strconv.Itoa(s.DstPort),
			s.State,
			formatAge(s.Age(now)),
			s.Container,
		}
	}
	m.Table.SetRows(rows)
	return m
}

// Restyle swaps the style set after a theme change.
func (m SessionsModel) Restyle(styles Styles) SessionsModel {
	m.Styles = styles
	m.Table.SetStyles(tableStyles(styles))
	return m
}

func (m SessionsModel) Resize(width, height int) SessionsModel {
	m.Width = width
	m.Height = height
	if height > 12 {
		m.Table.SetHeight(height - 10)
	}
	return m
}

func (m SessionsModel) Update(msg tea.Msg) (SessionsModel, tea.Cmd) {
	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m SessionsModel) View() string {
	if m.Current == nil {
		return m.Styles.Dim.Render("waiting for first poll...")
	}

	title := m.Styles.CardTitle.Render(fmt.Sprintf(
		"Active sessions  %d shown / %d tracked", len(m.Current.Sessions), m.Current.RawActive))
	left := m.Styles.Card.Render(title + "\n" + m.Table.View() + "\n" + m.viewStateCounts())

	right := m.Styles.Card.Render(m.viewTopSources())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m SessionsModel) viewStateCounts() string {
	if len(m.Current.StateCounts) == 0 {
		return m.Styles.Dim.Render("no visible sessions")
	}
	parts := make([]string, 0, len(m.Current.StateCounts))
	for _, state := range stateOrder {
		if n, ok := m.Current.StateCounts[state]; ok {
			parts = append(parts, fmt.Sprintf("%s:%d", state, n))
		}
	}
	return m.Styles.Dim.Render(strings.Join(parts, "  "))
}

// stateOrder fixes the display order of the state tally.
var stateOrder = []string{
	"ESTABLISHED", "SYN_SENT", "SYN_RECV", "FIN_WAIT",
	"CLOSE_WAIT", "LAST_ACK", "TIME_WAIT", "CLOSE", "NONE",
}

func (m SessionsModel) viewTopSources() string {
	var b strings.Builder
	b.WriteString(m.Styles.CardTitle.Render("Top sources"))
	b.WriteString("\n")
	if len(m.Current.TopSources) == 0 {
		b.WriteString(m.Styles.Dim.Render("none"))
		return b.String()
	}
	for _, src := range m.Current.TopSources {
		ports := make([]string, len(src.Ports))
		for i, p := range src.Ports {
			ports[i] = strconv.Itoa(p)
		}
		fmt.Fprintf(&b, "%-18s %3d  oldest %-8s :%s\n",
			src.IP, src.Active, formatAge(src.OldestAge), strings.Join(ports, ",:"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatAge renders a duration compactly for table cells.
func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
