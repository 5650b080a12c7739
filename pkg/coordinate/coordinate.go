// SPDX-License-Identifier: MPL-2.0

// Package coordinate models dependency coordinates of the form
// group:artifact[:version] together with the scope they are declared in.
package coordinate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCoordinate is the sentinel error wrapped by InvalidCoordinateError.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidScope is the sentinel error wrapped by InvalidScopeError.
	ErrInvalidScope = errors.New("invalid scope")
	// ErrInvalidDeclaration is the sentinel error wrapped by InvalidDeclarationError.
	ErrInvalidDeclaration = errors.New("invalid dependency declaration")
)

type (
	// Coordinate identifies an artifact. Version is empty when the version is
	// managed by an imported platform (BOM).
	Coordinate struct {
		Group    string `json:"group" yaml:"group"`
		Artifact string `json:"artifact" yaml:"artifact"`
		Version  string `json:"version,omitempty" yaml:"version,omitempty"`
	}

	// InvalidCoordinateError is returned when a coordinate string does not
	// have the group:artifact[:version] shape.
	InvalidCoordinateError struct {
		Value  string
		Reason string
	}
)

// Parse parses a group:artifact[:version] string.
func Parse(s string) (Coordinate, error) {
	if strings.TrimSpace(s) != s || s == "" {
		return Coordinate{}, &InvalidCoordinateError{Value: s, Reason: "must be non-empty without surrounding whitespace"}
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, &InvalidCoordinateError{Value: s, Reason: "expected group:artifact[:version]"}
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t/") {
			return Coordinate{}, &InvalidCoordinateError{Value: s, Reason: "segments must be non-empty and contain no whitespace or slashes"}
		}
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1]}
	if len(parts) == 3 {
		c.Version = parts[2]
	}
	return c, nil
}

// MustParse is like Parse but panics on error. Intended for literals.
func MustParse(s string) Coordinate {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the coordinate in group:artifact[:version] form.
func (c Coordinate) String() string {
	if c.Version == "" {
		return c.Group + ":" + c.Artifact
	}
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// Module returns the versionless group:artifact key.
func (c Coordinate) Module() string { return c.Group + ":" + c.Artifact }

// HasVersion reports whether the coordinate pins an explicit version.
func (c Coordinate) HasVersion() bool { return c.Version != "" }

// WithVersion returns a copy of c with the given version.
func (c Coordinate) WithVersion(v string) Coordinate {
	c.Version = v
	return c
}

// Error implements the error interface for InvalidCoordinateError.
func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidCoordinate for errors.Is() compatibility.
func (e *InvalidCoordinateError) Unwrap() error { return ErrInvalidCoordinate }
