// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config holds the runtime configuration for the watcher: poll
// cadence, persistence paths, filter policy constants, and the optional
// watched-port override. Values come from an optional YAML file with
// command-line flags layered on top.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"grimm.is/lurewatch/internal/brand"
	"grimm.is/lurewatch/internal/errors"
	"grimm.is/lurewatch/internal/netutil"
)

// DefaultAdminPorts are operator-facing service ports excluded from
// tracking by default (host management SSH and web UI).
var DefaultAdminPorts = []int{64295, 64294, 64297}

// DefaultFallbackPorts is the watched-port set used when listening-port
// discovery fails and no override is configured.
var DefaultFallbackPorts = []int{
	21, 22, 23, 25, 53, 80, 110, 111, 135, 139, 143, 443, 445,
	465, 587, 993, 995,
	1433, 1521, 1723, 1883, 2049, 2181,
	2375, 2376,
	3306, 3389, 5432, 5900, 5985, 5986,
	6379, 6667,
	7001, 8000, 8008, 8080, 8088, 8443, 8888, 9000,
	9200, 9300,
	11211, 27017,
	64296, 64298, 64299, 64303, 64305,
}

// Config is the top-level configuration.
type Config struct {
	// WatchPorts is an explicit watched-port override ("22,80,443" or
	// "20-25" syntax, see ParsePortList). Empty means auto-derive from
	// listening ports.
	WatchPorts string `yaml:"watch_ports"`

	PollInterval     time.Duration `yaml:"poll_interval"`
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
	SourceTimeout    time.Duration `yaml:"source_timeout"`
	DockerRefresh    time.Duration `yaml:"docker_refresh"`

	// HistoryMinDuration is the long-session threshold: an ended session
	// shorter than this never enters the history.
	HistoryMinDuration time.Duration `yaml:"history_min_duration"`
	HistorySize        int           `yaml:"history_size"`
	TopN               int           `yaml:"top_n"`

	AdminPorts    []int    `yaml:"admin_ports"`
	PrivateRanges []string `yaml:"private_ranges"`
	FallbackPorts []int    `yaml:"fallback_ports"`

	StatsPath    string `yaml:"stats_path"`
	SnapshotPath string `yaml:"snapshot_path"`
	LogPath      string `yaml:"log_path"`
	LogLevel     string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		PollInterval:       1 * time.Second,
		AutosaveInterval:   60 * time.Second,
		SourceTimeout:      6 * time.Second,
		DockerRefresh:      8 * time.Second,
		HistoryMinDuration: 1 * time.Second,
		HistorySize:        50,
		TopN:               10,
		AdminPorts:         append([]int(nil), DefaultAdminPorts...),
		PrivateRanges:      append([]string(nil), netutil.DefaultPrivateRanges...),
		FallbackPorts:      append([]int(nil), DefaultFallbackPorts...),
		StatsPath:          filepath.Join(home, brand.StatsFileName),
		SnapshotPath:       filepath.Join(home, brand.SnapshotFileName),
		LogLevel:           "info",
	}
}

// Load reads a YAML config file over the defaults. A missing path is not
// an error; an unreadable or unparsable file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, errors.KindIO, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "parse config %s", path)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot start with. Per the
// startup contract, an explicitly supplied but empty watched-port
// override is fatal rather than silently falling back to discovery.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return errors.New(errors.KindValidation, "poll_interval must be positive")
	}
	if c.AutosaveInterval <= 0 {
		return errors.New(errors.KindValidation, "autosave_interval must be positive")
	}
	if c.HistorySize < 0 {
		return errors.New(errors.KindValidation, "history_size must not be negative")
	}
	if c.TopN <= 0 {
		return errors.New(errors.KindValidation, "top_n must be positive")
	}
	if c.WatchPorts != "" {
		ports, err := ParsePortList(c.WatchPorts)
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			return errors.New(errors.KindValidation, "watch_ports override resolves to an empty set")
		}
	}
	if c.StatsPath == "" {
		return errors.New(errors.KindValidation, "stats_path must be set")
	}
	return nil
}

// OverridePorts returns the parsed watched-port override, or nil when the
// config relies on auto-derivation.
func (c *Config) OverridePorts() []int {
	if c.WatchPorts == "" {
		return nil
	}
	ports, err := ParsePortList(c.WatchPorts)
	if err != nil {
		return nil
	}
	return ports
}
