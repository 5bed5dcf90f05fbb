// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package watch

import (
	"fmt"
	"strings"
	"time"

	"grimm.is/lurewatch/internal/brand"
)

// renderSnapshot produces the plain-text state dump written next to
// the stats file on every save. Caller holds s.mu.
func (s *Service) renderSnapshot(now time.Time) string {
	var b strings.Builder
	rec := s.eng.Record()
	t := s.eng.Toggles()

	fmt.Fprintf(&b, "%s snapshot %s\n", brand.Name, now.Format(time.RFC3339))
	fmt.Fprintf(&b, "engine start: %s\n", rec.EngineStart.Format(time.RFC3339))
	fmt.Fprintf(&b, "filters: hide-private=%v hide-admin=%v loopback=%v established-only=%v\n",
		t.HidePrivate, t.HideAdmin, t.IncludeLoopback, t.EstablishedOnly)
	fmt.Fprintf(&b, "watched ports (%d): %s\n", len(s.watched), joinPorts(s.watched))
	b.WriteString("\n")

	view := s.eng.BuildView(now, s.cfg.TopN)
	fmt.Fprintf(&b, "active sessions: %d shown, %d tracked\n", len(view.Sessions), view.RawActive)
	for _, sess := range view.Sessions {
		fmt.Fprintf(&b, "  %-15s :%-5d -> :%-5d %-12s age=%-8s %s\n",
			sess.SrcIP, sess.SrcPort, sess.DstPort, sess.State,
			formatDuration(sess.Age(now)), sess.Container)
	}
	b.WriteString("\n")

	top := rec.TopPortHits(s.cfg.TopN)
	fmt.Fprintf(&b, "lifetime port hits (top %d):\n", len(top))
	for _, ph := range top {
		label := ""
		for _, pc := range view.PortActive {
			if pc.Port == ph.Port {
				label = pc.Container
				break
			}
		}
		fmt.Fprintf(&b, "  :%-5d %8d  %s\n", ph.Port, ph.Hits, label)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "longest ended sessions (%d):\n", len(rec.EndedHistory))
	for _, e := range rec.EndedHistory {
		fmt.Fprintf(&b, "  %-15s -> :%-5d %-12s dur=%-8s ended=%s %s\n",
			e.SrcIP, e.DstPort, e.State, formatDuration(e.Duration()),
			e.EndedAt.Format(time.RFC3339), e.Container)
	}

	if len(rec.Notes) > 0 {
		b.WriteString("\nnotes:\n")
		for _, n := range rec.Notes {
			fmt.Fprintf(&b, "  %s\n", n)
		}
	}
	return b.String()
}

func joinPorts(ports []int) string {
	if len(ports) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ",")
}

// formatDuration renders a duration compactly: 42s, 3m10s, 2h05m.
func formatDuration(d time.Duration) string {
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
