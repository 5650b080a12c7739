// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/additionalbeans/buildconv/internal/locate"
	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor maps an error to the process exit status. Errors that carry no
// classification are plain failures.
func exitCodeFor(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	if exitErr, ok := errors.AsType[*ExitError](err); ok {
		return exitErr.Code
	}
	if svcErr, ok := errors.AsType[*ServiceError](err); ok && svcErr.Code != 0 {
		return svcErr.Code
	}
	switch {
	case errors.Is(err, locate.ErrResolution):
		return types.ExitResolution
	case errors.Is(err, convention.ErrConfiguration):
		return types.ExitConfiguration
	default:
		return types.ExitFailure
	}
}
