// SPDX-License-Identifier: MPL-2.0

package coordinate

import (
	"fmt"
	"strings"
)

type (
	// Declaration is a dependency as written in a workspace file. Exactly one
	// of Coordinate and Project is set. Transitive defaults to true.
	Declaration struct {
		Coordinate string `json:"coordinate,omitempty"`
		Project    string `json:"project,omitempty"`
		Scope      Scope  `json:"scope"`
		Transitive *bool  `json:"transitive,omitempty"`
	}

	// Dependency is a validated Declaration.
	Dependency struct {
		// Coordinate is the external artifact. Zero for project dependencies.
		Coordinate Coordinate `json:"coordinate,omitzero" yaml:"coordinate,omitempty"`
		// Project names a sibling module of the same workspace.
		Project    string `json:"project,omitempty" yaml:"project,omitempty"`
		Scope      Scope  `json:"scope" yaml:"scope"`
		Transitive bool   `json:"transitive" yaml:"transitive"`
	}

	// InvalidDeclarationError collects field errors of a Declaration.
	InvalidDeclarationError struct {
		Declaration Declaration
		FieldErrors []error
	}
)

// Resolve validates the declaration and converts it to a Dependency.
func (d Declaration) Resolve() (Dependency, error) {
	var errs []error
	if valid, fieldErrs := d.Scope.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}

	dep := Dependency{Scope: d.Scope, Transitive: true, Project: d.Project}
	if d.Transitive != nil {
		dep.Transitive = *d.Transitive
	}

	switch {
	case d.Coordinate != "" && d.Project != "":
		errs = append(errs, fmt.Errorf("coordinate %q and project %q are mutually exclusive", d.Coordinate, d.Project))
	case d.Coordinate == "" && d.Project == "":
		errs = append(errs, fmt.Errorf("one of coordinate or project is required"))
	case d.Coordinate != "":
		c, err := Parse(d.Coordinate)
		if err != nil {
			errs = append(errs, err)
		}
		dep.Coordinate = c
	}

	if len(errs) > 0 {
		return Dependency{}, &InvalidDeclarationError{Declaration: d, FieldErrors: errs}
	}
	return dep, nil
}

// IsProject reports whether the dependency points at a sibling module.
func (d Dependency) IsProject() bool { return d.Project != "" }

// Notation renders the dependency the way a build script would declare it.
func (d Dependency) Notation() string {
	target := fmt.Sprintf("%q", d.Coordinate.String())
	if d.IsProject() {
		target = fmt.Sprintf("project(%q)", ":"+d.Project)
	}
	if !d.Transitive {
		return fmt.Sprintf("%s(%s) { isTransitive = false }", d.Scope, target)
	}
	return fmt.Sprintf("%s(%s)", d.Scope, target)
}

// WithScope returns a copy of d declared in another scope.
func (d Dependency) WithScope(s Scope) Dependency {
	d.Scope = s
	return d
}

// Error implements the error interface for InvalidDeclarationError.
func (e *InvalidDeclarationError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid dependency declaration: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidDeclaration for errors.Is() compatibility.
func (e *InvalidDeclarationError) Unwrap() error { return ErrInvalidDeclaration }
