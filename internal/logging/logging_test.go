// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Config{Level: LevelWarn, Output: &buf})

	lg.Info("invisible", "k", "v")
	assert.Empty(t, buf.String())

	lg.Warn("visible", "port", 2222)
	out := buf.String()
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "2222")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	old := Default()
	SetDefault(New(Config{Level: LevelInfo, Output: &buf}))
	defer SetDefault(old)

	WithComponent("engine").Info("cycle done")
	assert.Contains(t, buf.String(), "component")
	assert.Contains(t, buf.String(), "engine")
}
