// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package host

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fakeProc(t *testing.T, stat string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stat"), stat)
	writeFile(t, filepath.Join(dir, "loadavg"), "0.52 0.41 0.30 1/213 4242\n")
	writeFile(t, filepath.Join(dir, "uptime"), "12345.67 98765.43\n")
	writeFile(t, filepath.Join(dir, "meminfo"),
		"MemTotal:       4096000 kB\nMemFree:        1024000 kB\nMemAvailable:   2048000 kB\n")
	return dir
}

func fakeSys(t *testing.T, rx, tx uint64) string {
	t.Helper()
	dir := t.TempDir()
	statsDir := filepath.Join(dir, "class", "net", "eth0", "statistics")
	writeFile(t, filepath.Join(statsDir, "rx_bytes"), formatUint(rx))
	writeFile(t, filepath.Join(statsDir, "tx_bytes"), formatUint(tx))
	// Loopback must be skipped.
	loDir := filepath.Join(dir, "class", "net", "lo", "statistics")
	writeFile(t, filepath.Join(loDir, "rx_bytes"), "999999\n")
	writeFile(t, filepath.Join(loDir, "tx_bytes"), "999999\n")
	return dir
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10) + "\n"
}

func TestSample_BasicReadings(t *testing.T) {
	proc := fakeProc(t, "cpu  100 0 100 800 0 0 0 0 0 0\ncpu0 100 0 100 800 0 0 0 0 0 0\n")
	sys := fakeSys(t, 1000, 2000)
	s := NewSamplerAt(proc, sys, "/")

	info := s.Sample(time.Now())
	assert.Equal(t, 0.52, info.Load.Load1)
	assert.Equal(t, 0.30, info.Load.Load15)
	assert.InDelta(t, 12345.67, info.UptimeS, 0.01)
	assert.Equal(t, uint64(4096000*1024), info.Memory.TotalBytes)
	assert.Equal(t, uint64(2048000*1024), info.Memory.AvailableBytes)
	assert.InDelta(t, 50.0, info.Memory.UsedPercent(), 0.01)
	require.Len(t, info.Ifaces, 1, "loopback excluded")
	assert.Equal(t, "eth0", info.Ifaces[0].Name)
}

func TestSample_CPUPercentNeedsTwoSamples(t *testing.T) {
	proc := fakeProc(t, "cpu  100 0 100 800 0 0 0 0 0 0\n")
	s := NewSamplerAt(proc, t.TempDir(), "/")

	info := s.Sample(time.Now())
	assert.Equal(t, 0.0, info.CPUPercent, "first sample has no delta")

	// 200 busy and 800 idle ticks later: 20% busy.
	writeFile(t, filepath.Join(proc, "stat"), "cpu  250 0 150 1600 0 0 0 0 0 0\n")
	info = s.Sample(time.Now())
	assert.InDelta(t, 20.0, info.CPUPercent, 0.01)
}

func TestSample_IfaceRates(t *testing.T) {
	proc := fakeProc(t, "cpu  100 0 100 800 0 0 0 0 0 0\n")
	sys := fakeSys(t, 1000, 2000)
	s := NewSamplerAt(proc, sys, "/")

	base := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	info := s.Sample(base)
	assert.Equal(t, 0.0, info.Ifaces[0].RxBytesPS, "first sample has no delta")

	writeFile(t, filepath.Join(sys, "class", "net", "eth0", "statistics", "rx_bytes"), "3000\n")
	writeFile(t, filepath.Join(sys, "class", "net", "eth0", "statistics", "tx_bytes"), "2000\n")
	info = s.Sample(base.Add(2 * time.Second))
	require.Len(t, info.Ifaces, 1)
	assert.InDelta(t, 1000.0, info.Ifaces[0].RxBytesPS, 0.01)
	assert.Equal(t, 0.0, info.Ifaces[0].TxBytesPS)
}

func TestSample_MissingProcFiles(t *testing.T) {
	s := NewSamplerAt(t.TempDir(), t.TempDir(), "/")
	info := s.Sample(time.Now())
	assert.Equal(t, 0.0, info.CPUPercent)
	assert.Empty(t, info.Ifaces)
	assert.Equal(t, uint64(0), info.Memory.TotalBytes)
}
