// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package testutil

import (
	"os"
	"testing"
)

// RequireHost skips the test unless the LUREWATCH_HOST_TEST environment
// variable is set. Tests gated this way touch real host facilities
// (conntrack, ss, procfs) and only make sense on a Linux box with the
// tools installed.
func RequireHost(t *testing.T) {
	t.Helper()
	if os.Getenv("LUREWATCH_HOST_TEST") == "" {
		t.Skip("Skipping test: requires LUREWATCH_HOST_TEST environment")
	}
}
