// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/lurewatch/internal/errors"
)

func TestParsePortList(t *testing.T) {
	ports, err := ParsePortList("22,80,443")
	require.NoError(t, err)
	assert.Equal(t, []int{22, 80, 443}, ports)

	ports, err = ParsePortList("20-25")
	require.NoError(t, err)
	assert.Equal(t, []int{20, 21, 22, 23, 24, 25}, ports)

	// Mixed separators, duplicates, reversed range.
	ports, err = ParsePortList(" 443, 80 82-80  443 ")
	require.NoError(t, err)
	assert.Equal(t, []int{80, 81, 82, 443}, ports)
}

func TestParsePortList_Invalid(t *testing.T) {
	for _, s := range []string{"abc", "0", "70000", "22,x", "10-"} {
		_, err := ParsePortList(s)
		require.Error(t, err, "input %q", s)
		assert.Equal(t, errors.KindValidation, errors.GetKind(err))
	}
}

func TestParsePortList_Empty(t *testing.T) {
	ports, err := ParsePortList("")
	require.NoError(t, err)
	assert.Empty(t, ports)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 50, cfg.HistorySize)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lurewatch.yaml")
	data := []byte("watch_ports: \"22,80\"\npoll_interval: 2s\nhistory_size: 10\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 10, cfg.HistorySize)
	assert.Equal(t, []int{22, 80}, cfg.OverridePorts())

	// Untouched fields keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.AutosaveInterval)
}

func TestLoad_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not yaml"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.GetKind(err))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.WatchPorts = "not ports"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.PollInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.TopN = 0
	assert.Error(t, cfg.Validate())
}
