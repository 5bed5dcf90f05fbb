// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package brand provides centralized naming constants so the tool can be
// renamed without touching the rest of the tree.
package brand

const (
	Name      = "Lurewatch"
	LowerName = "lurewatch"
	Version   = "0.1.0"

	BinaryName = "lurewatch"

	// File names under the state directory (defaults to $HOME).
	StatsFileName    = ".lurewatch_stats.json"
	SnapshotFileName = ".lurewatch_snapshot.txt"
	ConfigFileName   = "lurewatch.yaml"
)
