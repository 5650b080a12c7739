// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrValidation is wrapped by every ValidationError.
var ErrValidation = errors.New("CUE validation failed")

type (
	// ValidationError lists the problems CUE reported for one file.
	ValidationError struct {
		// FilePath is the file being validated.
		FilePath string
		Problems []Problem
	}

	// Problem is a single CUE error located by its JSON-style path.
	Problem struct {
		// CUEPath is the path to the invalid value (e.g., "modules.jdbc.version").
		CUEPath string
		Message string
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		lines = append(lines, p.String())
	}
	if len(lines) == 1 {
		return fmt.Sprintf("%s: %s", e.FilePath, lines[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
}

// Unwrap returns ErrValidation for errors.Is() compatibility.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func (p Problem) String() string {
	if p.CUEPath == "" {
		return p.Message
	}
	return p.CUEPath + ": " + p.Message
}

// FormatError converts a CUE error into a *ValidationError whose message is
// <file-path>: <json-path>: <message>, e.g.
//
//	workspace.cue: modules.jdbc.version: conflicting values "1" and int
//
// Errors that do not originate from CUE are wrapped with the file path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	if _, ok := errors.AsType[cueerrors.Error](err); !ok {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	cueErrs := cueerrors.Errors(err)

	vErr := &ValidationError{FilePath: filePath}
	for _, e := range cueErrs {
		pathStr := formatPath(cueerrors.Path(e))
		msg := e.Error()

		// CUE sometimes includes the path in the message itself
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimPrefix(msg, pathStr)
			msg = strings.TrimPrefix(msg, ":")
			msg = strings.TrimSpace(msg)
		}
		vErr.Problems = append(vErr.Problems, Problem{CUEPath: pathStr, Message: msg})
	}
	return vErr
}

// formatPath converts a CUE error path such as ["modules", "0", "name"] to
// "modules[0].name".
func formatPath(path []string) string {
	if len(path) == 0 {
		return ""
	}

	var result strings.Builder
	for i, part := range path {
		if isIndex(part) && i > 0 {
			result.WriteString("[")
			result.WriteString(part)
			result.WriteString("]")
			continue
		}
		if i > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}
	return result.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize verifies that data does not exceed maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
