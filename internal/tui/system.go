// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"grimm.is/lurewatch/internal/host"
	"grimm.is/lurewatch/internal/watch"
)

// SystemModel shows host vitals and monitor loop status.
type SystemModel struct {
	Backend Backend
	Styles  Styles

	Info   host.Info
	Status watch.Status
}

func NewSystemModel(backend Backend, styles Styles) SystemModel {
	return SystemModel{Backend: backend, Styles: styles}
}

func (m SystemModel) Refresh(time.Time) SystemModel {
	m.Info = m.Backend.HostInfo()
	m.Status = m.Backend.CurrentStatus()
	return m
}

func (m SystemModel) Restyle(styles Styles) SystemModel {
	m.Styles = styles
	return m
}

func (m SystemModel) View() string {
	vitals := m.Styles.Card.Render(m.viewVitals())
	net := m.Styles.Card.Render(m.viewNetwork())
	loop := m.Styles.Card.Render(m.viewLoop())
	top := lipgloss.JoinHorizontal(lipgloss.Top, vitals, net)
	return lipgloss.JoinVertical(lipgloss.Left, top, loop)
}

func (m SystemModel) viewVitals() string {
	var b strings.Builder
	b.WriteString(m.Styles.CardTitle.Render("Host"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "hostname  %s\n", m.Info.Hostname)
	fmt.Fprintf(&b, "address   %s\n", m.Info.PrimaryIP)
	fmt.Fprintf(&b, "uptime    %s\n", formatAge(time.Duration(m.Info.UptimeS)*time.Second))
	fmt.Fprintf(&b, "cpu       %s\n", m.gauge(m.Info.CPUPercent))
	fmt.Fprintf(&b, "load      %.2f %.2f %.2f\n", m.Info.Load.Load1, m.Info.Load.Load5, m.Info.Load.Load15)
	fmt.Fprintf(&b, "memory    %s  %s / %s\n", m.gauge(m.Info.Memory.UsedPercent()),
		formatBytes(m.Info.Memory.UsedBytes()), formatBytes(m.Info.Memory.TotalBytes))
	fmt.Fprintf(&b, "disk /    %s  %s / %s", m.gauge(m.Info.Disk.UsedPercent()),
		formatBytes(m.Info.Disk.UsedBytes), formatBytes(m.Info.Disk.TotalBytes))
	return b.String()
}

func (m SystemModel) viewNetwork() string {
	var b strings.Builder
	b.WriteString(m.Styles.CardTitle.Render("Interfaces"))
	b.WriteString("\n")
	if len(m.Info.Ifaces) == 0 {
		b.WriteString(m.Styles.Dim.Render("none"))
		return b.String()
	}
	for _, ifc := range m.Info.Ifaces {
		fmt.Fprintf(&b, "%-10s rx %10s/s  tx %10s/s\n",
			ifc.Name, formatBytes(uint64(ifc.RxBytesPS)), formatBytes(uint64(ifc.TxBytesPS)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m SystemModel) viewLoop() string {
	var b strings.Builder
	b.WriteString(m.Styles.CardTitle.Render("Monitor"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "started     %s\n", m.Status.Started.Format(time.RFC3339))
	saved := "never"
	if !m.Status.LastSaved.IsZero() {
		saved = m.Status.LastSaved.Format("15:04:05")
	}
	fmt.Fprintf(&b, "last save   %s\n", saved)
	fmt.Fprintf(&b, "last cycle  %d active, %d new, %d ended\n",
		m.Status.LastCycle.Active, m.Status.LastCycle.New, m.Status.LastCycle.Ended)
	fmt.Fprintf(&b, "resets      %d", m.Status.Resets)
	if m.Status.SourceErr != "" {
		b.WriteString("\n" + m.Styles.Bad.Render("source: "+m.Status.SourceErr))
	}
	if m.Status.SaveErr != "" {
		b.WriteString("\n" + m.Styles.Bad.Render("save: "+m.Status.SaveErr))
	}
	return b.String()
}

// gauge renders a percentage with a small bar, colored by load.
func (m SystemModel) gauge(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 10)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	style := m.Styles.Good
	switch {
	case pct >= 90:
		style = m.Styles.Bad
	case pct >= 70:
		style = m.Styles.Warn
	}
	return style.Render(bar) + fmt.Sprintf(" %5.1f%%", pct)
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "KMGTPE"[exp])
}
