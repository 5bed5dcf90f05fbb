// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package sources wraps the external data producers the engine samples
// each cycle: the kernel connection table, the local listening-port set,
// and the container runtime's port mappings. Every producer is treated as
// opaque and possibly failing; a failure degrades that producer's data
// for one cycle and nothing else.
package sources

import (
	"context"
	"os/exec"

	"grimm.is/lurewatch/internal/errors"
)

// Runner executes an external command and returns its stdout. Swappable
// in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands on the host. Stderr is discarded: conntrack
// and ss emit warnings when not root, and those are noise here.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrapf(ctx.Err(), errors.KindTimeout, "%s timed out", name)
		}
		return "", errors.Wrapf(err, errors.KindUnavailable, "%s failed", name)
	}
	return string(out), nil
}
