// SPDX-License-Identifier: MPL-2.0

package convention

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks fatal configuration errors. Every error returned by
	// this package wraps it, as do the BOM and task graph packages.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnknownLayer is returned when a module or layer references a layer
	// that is not defined.
	ErrUnknownLayer = errors.New("unknown convention layer")
	// ErrLayerCycle is returned when extends chains form a cycle.
	ErrLayerCycle = errors.New("convention layer cycle")
	// ErrUnsetProperty is returned when a required project property is absent.
	ErrUnsetProperty = errors.New("required property not set")
)

type (
	// UnknownLayerError names the missing layer and who referenced it.
	UnknownLayerError struct {
		Layer        string
		ReferencedBy string
	}

	// LayerCycleError lists the layers participating in an extends cycle.
	LayerCycleError struct {
		Layers []string
	}

	// UnsetPropertyError is returned when a module needs a property that the
	// build's external configuration does not define.
	UnsetPropertyError struct {
		Property string
		Module   string
		Purpose  string
	}
)

// Error implements the error interface for UnknownLayerError.
func (e *UnknownLayerError) Error() string {
	return fmt.Sprintf("convention layer %q referenced by %s is not defined", e.Layer, e.ReferencedBy)
}

// Unwrap allows errors.Is to match both ErrUnknownLayer and ErrConfiguration.
func (e *UnknownLayerError) Unwrap() []error { return []error{ErrUnknownLayer, ErrConfiguration} }

// Error implements the error interface for LayerCycleError.
func (e *LayerCycleError) Error() string {
	return fmt.Sprintf("convention layers extend each other in a cycle: %s", strings.Join(e.Layers, ", "))
}

// Unwrap allows errors.Is to match both ErrLayerCycle and ErrConfiguration.
func (e *LayerCycleError) Unwrap() []error { return []error{ErrLayerCycle, ErrConfiguration} }

// Error implements the error interface for UnsetPropertyError.
func (e *UnsetPropertyError) Error() string {
	return fmt.Sprintf("module %s requires property %q (%s) but it is not set", e.Module, e.Property, e.Purpose)
}

// Unwrap allows errors.Is to match both ErrUnsetProperty and ErrConfiguration.
func (e *UnsetPropertyError) Unwrap() []error { return []error{ErrUnsetProperty, ErrConfiguration} }

// configurationError wraps err so that errors.Is(err, ErrConfiguration) holds.
func configurationError(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, fmt.Errorf(format, args...))
}
