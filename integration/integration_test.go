//go:build integration

package integration

import (
	"os/exec"
	"testing"
)

// skipIfMPlayerNotInstalled skips the test when no mplayer binary is on PATH.
func skipIfMPlayerNotInstalled(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("mplayer"); err != nil {
		t.Skip("mplayer not installed")
	}
}
