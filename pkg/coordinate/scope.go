// SPDX-License-Identifier: MPL-2.0

package coordinate

import (
	"fmt"
	"slices"
)

const (
	// ScopeAPI is exported to consumers (compile and runtime).
	ScopeAPI Scope = "api"
	// ScopeImplementation is visible to the module only.
	ScopeImplementation Scope = "implementation"
	// ScopeCompileOnly is on the compile classpath but not shipped.
	ScopeCompileOnly Scope = "compileOnly"
	// ScopeRuntimeOnly is shipped but not on the compile classpath.
	ScopeRuntimeOnly Scope = "runtimeOnly"
	// ScopeTestImplementation is visible to test sources only.
	ScopeTestImplementation Scope = "testImplementation"
	// ScopeTestRuntimeOnly is on the test runtime classpath only.
	ScopeTestRuntimeOnly Scope = "testRuntimeOnly"
	// ScopeCheckstyle holds the static analysis tool itself.
	ScopeCheckstyle Scope = "checkstyle"
	// ScopeAgent holds java agents attached to test JVMs.
	ScopeAgent Scope = "agent"
)

type (
	// Scope is the configuration a dependency is declared in.
	Scope string

	// InvalidScopeError is returned when a Scope value is not recognized.
	InvalidScopeError struct {
		Value Scope
	}
)

var allScopes = []Scope{
	ScopeAPI,
	ScopeImplementation,
	ScopeCompileOnly,
	ScopeRuntimeOnly,
	ScopeTestImplementation,
	ScopeTestRuntimeOnly,
	ScopeCheckstyle,
	ScopeAgent,
}

// Scopes returns every recognized scope in declaration order.
func Scopes() []Scope { return slices.Clone(allScopes) }

// String returns the string representation of the Scope.
func (s Scope) String() string { return string(s) }

// IsValid returns whether the Scope is one of the defined scopes,
// and a list of validation errors if it is not.
func (s Scope) IsValid() (bool, []error) {
	if slices.Contains(allScopes, s) {
		return true, nil
	}
	return false, []error{&InvalidScopeError{Value: s}}
}

// Exported reports whether the scope leaks to consumers of the module.
func (s Scope) Exported() bool { return s == ScopeAPI }

// Test reports whether the scope only affects test source sets.
func (s Scope) Test() bool { return s == ScopeTestImplementation || s == ScopeTestRuntimeOnly }

// Main reports whether the scope contributes to the main source set.
func (s Scope) Main() bool {
	switch s {
	case ScopeAPI, ScopeImplementation, ScopeCompileOnly, ScopeRuntimeOnly:
		return true
	default:
		return false
	}
}

// Error implements the error interface for InvalidScopeError.
func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid scope %q (valid: %v)", e.Value, allScopes)
}

// Unwrap returns ErrInvalidScope for errors.Is() compatibility.
func (e *InvalidScopeError) Unwrap() error { return ErrInvalidScope }
