// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared by the CLI and the engine.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitSuccess reports that every requested operation succeeded.
	ExitSuccess ExitCode = 0
	// ExitFailure reports an unexpected or I/O failure.
	ExitFailure ExitCode = 1
	// ExitConfiguration reports an invalid workspace, layer chain or property set.
	ExitConfiguration ExitCode = 2
	// ExitResolution reports declared coordinates that no repository provides.
	ExitResolution ExitCode = 3
	// ExitUsage reports invalid command line arguments.
	ExitUsage ExitCode = 64
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is a process exit status in the POSIX range 0-255.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode for errors.Is() compatibility.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// IsValid returns whether the ExitCode is in range, and a list of
// validation errors if it is not.
func (c ExitCode) IsValid() (bool, []error) {
	if c < 0 || c > 255 {
		return false, []error{&InvalidExitCodeError{Value: c}}
	}
	return true, nil
}

// IsSuccess returns true if the exit code indicates success.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
