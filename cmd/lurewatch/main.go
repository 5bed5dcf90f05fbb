// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"grimm.is/lurewatch/internal/brand"
	"grimm.is/lurewatch/internal/config"
	"grimm.is/lurewatch/internal/logging"
	"grimm.is/lurewatch/internal/stats"
	"grimm.is/lurewatch/internal/tui"
	"grimm.is/lurewatch/internal/watch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", brand.BinaryName, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to "+brand.ConfigFileName)
		ports      = flag.String("ports", "", "watched ports override, e.g. \"22,2222,8000-8100\"")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error")
		logFile    = flag.String("log-file", "", "log destination (default: config log_path, else discarded)")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("%s %s\n", brand.BinaryName, brand.Version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *ports != "" {
		cfg.WatchPorts = *ports
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFile != "" {
		cfg.LogPath = *logFile
	}
	// An explicit but empty port override is a config error, not a
	// silent fallback to discovery.
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	logger := logging.WithComponent("main")
	logger.Info("starting", "version", brand.Version, "stats", cfg.StatsPath)

	store := stats.NewStore(cfg.StatsPath, cfg.SnapshotPath)
	rec, err := store.Load(time.Now())
	if err != nil {
		// A fresh record with a note was returned; keep going.
		logger.Warn("stats load degraded", "error", err)
	}

	svc, err := watch.New(cfg, rec, store, watch.Options{})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	p := tea.NewProgram(tui.NewModel(svc), tea.WithAltScreen())
	_, runErr := p.Run()

	// Final save happens inside Stop, before the process exits.
	svc.Stop()
	if runErr != nil {
		return fmt.Errorf("tui: %w", runErr)
	}
	logger.Info("stopped")
	return nil
}

// setupLogging sends logs to the configured file. The terminal belongs
// to the TUI, so without a file logs are discarded.
func setupLogging(cfg *config.Config) (func(), error) {
	level := logging.ParseLevel(cfg.LogLevel)

	var out io.Writer = io.Discard
	closeFn := func() {}
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	}

	logging.SetDefault(logging.New(logging.Config{Level: level, Output: out}))
	return closeFn, nil
}
