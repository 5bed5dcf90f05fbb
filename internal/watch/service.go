// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package watch runs the poll loop: it acquires the conntrack, listener,
// docker, and host sources each cycle, feeds the reconciliation engine,
// and handles autosave plus the final save on shutdown. All engine and
// record access funnels through the service mutex, giving the tracker a
// single logical timeline.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"grimm.is/lurewatch/internal/config"
	"grimm.is/lurewatch/internal/conntrack"
	"grimm.is/lurewatch/internal/engine"
	"grimm.is/lurewatch/internal/host"
	"grimm.is/lurewatch/internal/logging"
	"grimm.is/lurewatch/internal/sources"
	"grimm.is/lurewatch/internal/stats"
)

// Service owns the poll loop and mediates all access to the engine.
type Service struct {
	cfg    *config.Config
	eng    *engine.Engine
	store  *stats.Store
	logger *logging.Logger

	conntrack *sources.ConntrackSource
	listen    *sources.ListenSource
	docker    *sources.DockerSource
	sampler   *host.Sampler

	// overridePorts, when non-nil, pins the watched set and disables
	// listener derivation.
	overridePorts []int

	mu         sync.Mutex
	watched    []int
	containers []sources.Container
	hostInfo   host.Info
	lastCycle  engine.Cycle
	lastSaved  time.Time
	cycleErr   string
	saveErr    string

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// Options inject the service dependencies; zero fields get real
// implementations.
type Options struct {
	Runner    sources.Runner
	Conntrack *sources.ConntrackSource
	Listen    *sources.ListenSource
	Docker    *sources.DockerSource
	Sampler   *host.Sampler
}

// New builds a service from the validated config and a loaded record.
func New(cfg *config.Config, rec *stats.Record, store *stats.Store, opts Options) (*Service, error) {
	override := cfg.OverridePorts()

	runner := opts.Runner
	if runner == nil {
		runner = sources.ExecRunner{}
	}
	ct := opts.Conntrack
	if ct == nil {
		ct = sources.NewConntrackSource(runner)
	}
	listen := opts.Listen
	if listen == nil {
		listen = sources.NewListenSource(runner, cfg.FallbackPorts)
	}
	docker := opts.Docker
	if docker == nil {
		docker = sources.NewDockerSource(runner, cfg.DockerRefresh)
	}
	sampler := opts.Sampler
	if sampler == nil {
		sampler = host.NewSampler()
	}

	eng := engine.New(rec, engine.Options{
		Policy:             engine.NewPolicy(cfg.AdminPorts, cfg.PrivateRanges),
		Toggles:            engine.DefaultToggles(),
		HistoryMinDuration: cfg.HistoryMinDuration,
		HistorySize:        cfg.HistorySize,
	})

	return &Service{
		cfg:           cfg,
		eng:           eng,
		store:         store,
		logger:        logging.WithComponent("watch"),
		conntrack:     ct,
		listen:        listen,
		docker:        docker,
		sampler:       sampler,
		overridePorts: override,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}, nil
}

// Start launches the poll and autosave loop. It returns immediately;
// the loop runs until Stop or ctx cancellation.
func (s *Service) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	defer close(s.doneCh)

	poll := time.NewTicker(s.cfg.PollInterval)
	defer poll.Stop()
	autosave := time.NewTicker(s.cfg.AutosaveInterval)
	defer autosave.Stop()

	// Prime the first cycle so the TUI has data before the first tick.
	s.cycle(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case now := <-poll.C:
			s.cycle(ctx, now)
		case now := <-autosave.C:
			if err := s.save(now); err != nil {
				s.logger.Warn("autosave failed", "error", err)
			}
		}
	}
}

// cycle runs one poll pass: derive the watched set, pull the sources
// concurrently, then reconcile under the mutex.
func (s *Service) cycle(ctx context.Context, now time.Time) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
	defer cancel()

	watched := s.deriveWatched(ctx)
	watchedSet := make(map[int]bool, len(watched))
	for _, p := range watched {
		watchedSet[p] = true
	}

	var (
		entries []conntrack.Entry
		errMsg  string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := s.conntrack.Snapshot(gctx, watchedSet)
		if err != nil {
			return fmt.Errorf("conntrack: %w", err)
		}
		entries = snap
		return nil
	})
	g.Go(func() error {
		// Best effort; a missing docker runtime still yields an empty map.
		s.docker.Refresh(gctx, now)
		return nil
	})
	if err := g.Wait(); err != nil {
		errMsg = err.Error()
		s.logger.Warn("poll cycle degraded", "error", err)
	}

	labels := map[int]string(s.docker.PortMap())
	info := s.sampler.Sample(now)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched = watched
	s.containers = s.docker.Containers()
	s.hostInfo = info
	s.cycleErr = errMsg
	// A failed snapshot contributes an empty sequence for this cycle, so
	// tracked sessions end rather than age as phantoms until recovery.
	s.lastCycle = s.eng.Reconcile(entries, labels, now)
}

// deriveWatched resolves the watched-port set for this cycle: the
// explicit override when configured, otherwise the host's listening
// ports with management ports removed.
func (s *Service) deriveWatched(ctx context.Context) []int {
	if s.overridePorts != nil {
		return s.overridePorts
	}
	exclude := make(map[int]bool, len(s.cfg.AdminPorts))
	for _, p := range s.cfg.AdminPorts {
		exclude[p] = true
	}
	s.mu.Lock()
	includeLoopback := s.eng.Toggles().IncludeLoopback
	s.mu.Unlock()
	return s.listen.Ports(ctx, includeLoopback, exclude)
}

// save renders the snapshot and persists the record atomically.
// Callers outside the run loop use SaveNow.
func (s *Service) save(now time.Time) error {
	s.mu.Lock()
	snap := s.renderSnapshot(now)
	err := s.store.Save(s.eng.Record(), snap, now)
	if err == nil {
		s.lastSaved = now
		s.saveErr = ""
	} else {
		// Surfaced in the status line; in-memory state stays authoritative.
		s.saveErr = err.Error()
	}
	s.mu.Unlock()
	return err
}

// SaveNow persists immediately, outside the autosave schedule.
func (s *Service) SaveNow() error {
	return s.save(time.Now())
}

// Stop halts the loop and performs the final save before returning.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh

	if err := s.save(time.Now()); err != nil {
		s.logger.Error("final save failed", "error", err)
	}
	if err := s.conntrack.Close(); err != nil {
		s.logger.Debug("conntrack close", "error", err)
	}
}
