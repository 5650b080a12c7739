// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// fatalErrnos are the Win32 codes after which ReadDirectoryChangesW stops
// delivering events: too many open files (4), invalid handle (6) and not
// enough memory (8).
var fatalErrnos = []syscall.Errno{4, 6, 8}

func isFatalFsnotifyError(err error) bool {
	for _, errno := range fatalErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
