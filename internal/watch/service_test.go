// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/lurewatch/internal/config"
	"grimm.is/lurewatch/internal/errors"
	"grimm.is/lurewatch/internal/sources"
	"grimm.is/lurewatch/internal/stats"
)

var t0 = time.Date(2026, 2, 3, 15, 0, 0, 0, time.UTC)

type fakeRunner struct {
	out map[string]string
	err map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, _ ...string) (string, error) {
	if err, ok := f.err[name]; ok {
		return "", err
	}
	return f.out[name], nil
}

const conntrackOut = `tcp      6 431999 ESTABLISHED src=198.51.100.7 dst=203.0.113.50 sport=40000 dport=2222 src=203.0.113.50 dst=198.51.100.7 sport=2222 dport=40000 [ASSURED] mark=0 use=1
tcp      6 110 SYN_SENT src=198.51.100.8 dst=203.0.113.50 sport=40001 dport=8080 src=203.0.113.50 dst=198.51.100.8 sport=8080 dport=40001 mark=0 use=1
tcp      6 60 ESTABLISHED src=198.51.100.9 dst=203.0.113.50 sport=40002 dport=9999 src=203.0.113.50 dst=198.51.100.9 sport=9999 dport=40002 mark=0 use=1
`

const ssOut = `LISTEN 0 4096 0.0.0.0:2222 0.0.0.0:* users:(("cowrie",pid=712,fd=3))
LISTEN 0 4096 0.0.0.0:8080 0.0.0.0:* users:(("heralding",pid=900,fd=6))
LISTEN 0 4096 0.0.0.0:64295 0.0.0.0:* users:(("sshd",pid=1000,fd=8))
`

const dockerOut = "cowrie\tcowrie/cowrie:latest\t0.0.0.0:2222->2222/tcp\n" +
	"heralding\theralding:latest\t0.0.0.0:8080->8080/tcp\n"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.StatsPath = filepath.Join(dir, "stats.json")
	cfg.SnapshotPath = filepath.Join(dir, "snapshot.txt")
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config, runner sources.Runner) *Service {
	t.Helper()
	store := stats.NewStore(cfg.StatsPath, cfg.SnapshotPath)
	rec, err := store.Load(t0)
	require.NoError(t, err)
	svc, err := New(cfg, rec, store, Options{
		Runner:    runner,
		Conntrack: sources.NewExecConntrackSource(runner),
	})
	require.NoError(t, err)
	return svc
}

func defaultRunner() *fakeRunner {
	return &fakeRunner{out: map[string]string{
		"conntrack": conntrackOut,
		"ss":        ssOut,
		"docker":    dockerOut,
	}}
}

func TestCycle_TracksWatchedSessions(t *testing.T) {
	svc := newTestService(t, testConfig(t), defaultRunner())

	svc.cycle(context.Background(), t0)

	// Admin port 64295 is excluded from the watched derivation, so only
	// 2222 and 8080 are watched; the 9999 flow is dropped.
	assert.Equal(t, []int{2222, 8080}, svc.WatchedPorts())
	assert.False(t, svc.OverrideActive())

	view := svc.View(t0)
	require.Len(t, view.Sessions, 2)
	assert.Equal(t, "cowrie", view.Sessions[0].Container)

	top := svc.TopPortHits(10)
	require.Len(t, top, 2)
	assert.Equal(t, 2222, top[0].Port)

	containers := svc.Containers()
	require.Len(t, containers, 2)
}

func TestCycle_OverridePinsWatchedPorts(t *testing.T) {
	cfg := testConfig(t)
	cfg.WatchPorts = "9999"
	svc := newTestService(t, cfg, defaultRunner())

	svc.cycle(context.Background(), t0)

	assert.Equal(t, []int{9999}, svc.WatchedPorts())
	assert.True(t, svc.OverrideActive())
	view := svc.View(t0)
	require.Len(t, view.Sessions, 1)
	assert.Equal(t, 9999, view.Sessions[0].DstPort)
}

func TestCycle_SourceFailureEmptiesSnapshot(t *testing.T) {
	runner := defaultRunner()
	svc := newTestService(t, testConfig(t), runner)

	svc.cycle(context.Background(), t0)
	svc.cycle(context.Background(), t0.Add(5*time.Second))
	require.Equal(t, 2, svc.View(t0.Add(5*time.Second)).RawActive)

	// A failed source contributes an empty snapshot for the cycle, so
	// every tracked session ends instead of lingering stale.
	runner.err = map[string]error{
		"conntrack": errors.New(errors.KindUnavailable, "conntrack missing"),
	}
	svc.cycle(context.Background(), t0.Add(6*time.Second))

	assert.Equal(t, 0, svc.View(t0.Add(6*time.Second)).RawActive)
	assert.Contains(t, svc.CurrentStatus().SourceErr, "conntrack")
	assert.Len(t, svc.History(), 2)

	// Recovery repopulates from the live table and counts fresh hits.
	runner.err = nil
	svc.cycle(context.Background(), t0.Add(7*time.Second))
	assert.Equal(t, 2, svc.View(t0.Add(7*time.Second)).RawActive)
}

func TestCycle_EndedSessionReachesHistory(t *testing.T) {
	runner := defaultRunner()
	svc := newTestService(t, testConfig(t), runner)

	svc.cycle(context.Background(), t0)
	svc.cycle(context.Background(), t0.Add(5*time.Second))

	// The 2222 session disappears from the table.
	runner.out["conntrack"] = strings.Join(strings.Split(conntrackOut, "\n")[1:], "\n")
	svc.cycle(context.Background(), t0.Add(6*time.Second))

	hist := svc.History()
	require.Len(t, hist, 1)
	assert.Equal(t, "198.51.100.7", hist[0].SrcIP)
	assert.Equal(t, 2222, hist[0].DstPort)
	assert.Equal(t, 5.0, hist[0].DurationS)
}

func TestSaveNow_WritesStatsAndSnapshot(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, defaultRunner())

	svc.cycle(context.Background(), t0)
	require.NoError(t, svc.SaveNow())

	data, err := os.ReadFile(cfg.StatsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lifetime_port_hits")

	snap, err := os.ReadFile(cfg.SnapshotPath)
	require.NoError(t, err)
	assert.Contains(t, string(snap), "active sessions")
	assert.Contains(t, string(snap), "198.51.100.7")
}

func TestResetLifetimeCounts_Persists(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, defaultRunner())

	svc.cycle(context.Background(), t0)
	require.NotEmpty(t, svc.TopPortHits(10))
	require.NoError(t, svc.ResetLifetimeCounts())
	assert.Empty(t, svc.TopPortHits(10))

	store := stats.NewStore(cfg.StatsPath, "")
	rec, err := store.Load(t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, rec.LifetimePortHits)
	assert.Equal(t, 1, rec.Resets)
}

func TestStop_PerformsFinalSave(t *testing.T) {
	cfg := testConfig(t)
	cfg.PollInterval = 10 * time.Millisecond
	svc := newTestService(t, cfg, defaultRunner())

	svc.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	svc.Stop()

	_, err := os.Stat(cfg.StatsPath)
	assert.NoError(t, err, "final save must write the stats file")
}

func TestToggles_RoundTrip(t *testing.T) {
	svc := newTestService(t, testConfig(t), defaultRunner())

	tg := svc.Toggles()
	assert.True(t, tg.HidePrivate)
	tg.EstablishedOnly = true
	svc.SetToggles(tg)
	assert.True(t, svc.Toggles().EstablishedOnly)
}

func TestTheme_RoundTrip(t *testing.T) {
	svc := newTestService(t, testConfig(t), defaultRunner())
	assert.Empty(t, svc.Theme())
	svc.SetTheme("ember")
	assert.Equal(t, "ember", svc.Theme())
}
