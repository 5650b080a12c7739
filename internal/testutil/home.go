// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// IsolateConfigHome points every variable the per-user config directory is
// derived from at dir, so tests never read the developer's own config. The
// original values are restored when the test ends. Tests using it must not
// run in parallel.
func IsolateConfigHome(t testing.TB, dir string) {
	t.Helper()

	var keys []string
	switch runtime.GOOS {
	case "windows":
		keys = []string{"USERPROFILE", "APPDATA"}
	case "darwin":
		keys = []string{"HOME"}
	default:
		keys = []string{"HOME", "XDG_CONFIG_HOME"}
	}
	for _, key := range keys {
		t.Cleanup(MustSetenv(t, key, dir))
	}
}
