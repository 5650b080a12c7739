// SPDX-License-Identifier: MPL-2.0

// Package bom derives the dependency constraint set that a platform (BOM)
// module publishes for its sibling modules.
package bom

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/coordinate"
)

// UnspecifiedVersion is what a build tool reports for a version never set.
const UnspecifiedVersion = "unspecified"

var (
	// ErrUnsetVersion is returned when a constrained module has no version.
	ErrUnsetVersion = errors.New("module version is not set")
	// ErrDuplicateConstraint is returned when two modules share a group and name.
	ErrDuplicateConstraint = errors.New("duplicate constraint")
)

type (
	// Constraint pins the version consumers get for one module.
	Constraint struct {
		Group   string `json:"group" yaml:"group" toml:"group"`
		Name    string `json:"name" yaml:"name" toml:"name"`
		Version string `json:"version" yaml:"version" toml:"version"`
	}

	// Set is the constraint set of one platform module, sorted by group then name.
	Set struct {
		Platform    string       `json:"platform" yaml:"platform" toml:"platform"`
		Constraints []Constraint `json:"constraints" yaml:"constraints" toml:"constraint"`
	}

	// Options configures Generate.
	Options struct {
		// Suffix excludes modules whose name ends with it. Defaults to "-bom".
		Suffix string
	}

	// UnsetVersionError names the module whose version is missing.
	UnsetVersionError struct {
		Module  string
		Version string
	}
)

// Error implements the error interface for UnsetVersionError.
func (e *UnsetVersionError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("cannot constrain module %s: version is not set", e.Module)
	}
	return fmt.Sprintf("cannot constrain module %s: version is %q", e.Module, e.Version)
}

// Unwrap allows errors.Is to match both ErrUnsetVersion and convention.ErrConfiguration.
func (e *UnsetVersionError) Unwrap() []error {
	return []error{ErrUnsetVersion, convention.ErrConfiguration}
}

// Key returns the group:name key of the constraint.
func (c Constraint) Key() string { return c.Group + ":" + c.Name }

// Coordinate returns the constraint as a versioned coordinate.
func (c Constraint) Coordinate() coordinate.Coordinate {
	return coordinate.Coordinate{Group: c.Group, Artifact: c.Name, Version: c.Version}
}

// Generate emits one constraint per module that is neither marked as a
// platform nor named with the BOM suffix. It fails rather than emitting a constraint without a version.
// The result only depends on the module set, not on its order.
func Generate(platform string, modules []convention.Module, opts Options) (*Set, error) {
	suffix := cmp.Or(opts.Suffix, convention.DefaultBOMSuffix)

	set := &Set{Platform: platform, Constraints: []Constraint{}}
	seen := make(map[string]string, len(modules))
	for _, m := range modules {
		if m.Platform || strings.HasSuffix(m.Name, suffix) {
			continue
		}
		v := strings.TrimSpace(m.Version)
		if v == "" || v == UnspecifiedVersion {
			return nil, &UnsetVersionError{Module: m.Name, Version: m.Version}
		}
		if m.Group == "" {
			return nil, fmt.Errorf("%w: cannot constrain module %s: group is not set", convention.ErrConfiguration, m.Name)
		}
		c := Constraint{Group: m.Group, Name: m.Name, Version: v}
		if prev, dup := seen[c.Key()]; dup {
			return nil, fmt.Errorf("%w: %w: %s declared by %s and %s", convention.ErrConfiguration, ErrDuplicateConstraint, c.Key(), prev, m.Name)
		}
		seen[c.Key()] = m.Name
		set.Constraints = append(set.Constraints, c)
	}

	slices.SortFunc(set.Constraints, func(a, b Constraint) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Name, b.Name))
	})
	return set, nil
}

// Lookup returns the version constrained for group:name.
func (s *Set) Lookup(key string) (string, bool) {
	for _, c := range s.Constraints {
		if c.Key() == key {
			return c.Version, true
		}
	}
	return "", false
}

// Dependencies returns the constraints as api-scoped dependencies, the way a
// platform module declares them.
func (s *Set) Dependencies() []coordinate.Dependency {
	out := make([]coordinate.Dependency, 0, len(s.Constraints))
	for _, c := range s.Constraints {
		out = append(out, coordinate.Dependency{Coordinate: c.Coordinate(), Scope: coordinate.ScopeAPI, Transitive: true})
	}
	return out
}
