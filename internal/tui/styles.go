// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named color palette. The active theme is cycled with the
// theme key and the choice is persisted across restarts.
type Theme struct {
	Name      string
	Accent    lipgloss.Color
	Title     lipgloss.Color
	Good      lipgloss.Color
	Warn      lipgloss.Color
	Bad       lipgloss.Color
	Dim       lipgloss.Color
	Highlight lipgloss.Color
}

var themes = []Theme{
	{
		Name:      "abyss",
		Accent:    lipgloss.Color("39"),
		Title:     lipgloss.Color("45"),
		Good:      lipgloss.Color("42"),
		Warn:      lipgloss.Color("214"),
		Bad:       lipgloss.Color("196"),
		Dim:       lipgloss.Color("240"),
		Highlight: lipgloss.Color("231"),
	},
	{
		Name:      "ember",
		Accent:    lipgloss.Color("208"),
		Title:     lipgloss.Color("214"),
		Good:      lipgloss.Color("113"),
		Warn:      lipgloss.Color("220"),
		Bad:       lipgloss.Color("160"),
		Dim:       lipgloss.Color("238"),
		Highlight: lipgloss.Color("230"),
	},
	{
		Name:      "fen",
		Accent:    lipgloss.Color("77"),
		Title:     lipgloss.Color("84"),
		Good:      lipgloss.Color("78"),
		Warn:      lipgloss.Color("178"),
		Bad:       lipgloss.Color("167"),
		Dim:       lipgloss.Color("241"),
		Highlight: lipgloss.Color("194"),
	},
	{
		Name:      "mono",
		Accent:    lipgloss.Color("250"),
		Title:     lipgloss.Color("255"),
		Good:      lipgloss.Color("252"),
		Warn:      lipgloss.Color("248"),
		Bad:       lipgloss.Color("255"),
		Dim:       lipgloss.Color("240"),
		Highlight: lipgloss.Color("255"),
	},
}

// ThemeByName returns the named theme, falling back to the first one.
func ThemeByName(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

// Styles holds the rendered lipgloss styles for the active theme.
type Styles struct {
	App       lipgloss.Style
	TopBar    lipgloss.Style
	Title     lipgloss.Style
	MenuKey   lipgloss.Style
	MenuItem  lipgloss.Style
	MenuOn    lipgloss.Style
	Card      lipgloss.Style
	CardTitle lipgloss.Style
	Good      lipgloss.Style
	Warn      lipgloss.Style
	Bad       lipgloss.Style
	Dim       lipgloss.Style
	Footer    lipgloss.Style
	TableHead lipgloss.Style
	TableSel  lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		App:     lipgloss.NewStyle().Padding(0, 1),
		TopBar:  lipgloss.NewStyle().MarginBottom(1),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Title),
		MenuKey: lipgloss.NewStyle().Foreground(t.Accent),
		MenuItem: lipgloss.NewStyle().
			Foreground(t.Dim).Padding(0, 1),
		MenuOn: lipgloss.NewStyle().
			Foreground(t.Highlight).Bold(true).Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Dim).
			Padding(0, 1),
		CardTitle: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Good:      lipgloss.NewStyle().Foreground(t.Good),
		Warn:      lipgloss.NewStyle().Foreground(t.Warn),
		Bad:       lipgloss.NewStyle().Foreground(t.Bad),
		Dim:       lipgloss.NewStyle().Foreground(t.Dim),
		Footer:    lipgloss.NewStyle().Foreground(t.Dim).MarginTop(1),
		TableHead: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		TableSel: lipgloss.NewStyle().
			Foreground(t.Highlight).Background(t.Dim),
	}
}
