// SPDX-License-Identifier: MPL-2.0

package convention

import "github.com/additionalbeans/buildconv/pkg/coordinate"

const (
	// LayerCommon is the root layer applied to every module.
	LayerCommon = "common"
	// LayerLibrary extends LayerCommon with publishing policy.
	LayerLibrary = "library"

	// DefaultBOMSuffix marks modules that only publish constraints.
	DefaultBOMSuffix = "-bom"
	// DefaultIntegrationSuite is the name of the secondary test suite.
	DefaultIntegrationSuite = "integrationTest"
	// PrimarySuite is the name of the unit test suite.
	PrimarySuite = "test"
)

type (
	// Layer is a named bundle of settings that extends at most one parent.
	Layer struct {
		Extends  string   `json:"extends,omitempty"`
		Settings Settings `json:"settings,omitzero"`
	}

	// Module is a leaf build unit. It applies exactly one convention layer and
	// contributes its own settings and dependencies on top.
	Module struct {
		Name       string `json:"name"`
		Group      string `json:"group"`
		Version    string `json:"version"`
		Convention string `json:"convention"`
		// Platform marks a module that publishes version constraints for its
		// siblings instead of code.
		Platform bool     `json:"platform,omitempty"`
		Settings Settings `json:"settings,omitzero"`
		// Dependencies are appended after the layer chain's dependencies.
		Dependencies []coordinate.Declaration `json:"dependencies,omitempty"`
		Suites       map[string]SuiteDecl     `json:"suites,omitempty"`
	}

	// SuiteDecl customizes a test suite of a module.
	SuiteDecl struct {
		// Inherit lists the module scopes whose dependencies the suite sees.
		Inherit []coordinate.Scope `json:"inherit,omitempty"`
		// IncludeSelf adds the module's main output to the suite (default true
		// for the integration suite).
		IncludeSelf  *bool                    `json:"includeSelf,omitempty"`
		Dependencies []coordinate.Declaration `json:"dependencies,omitempty"`
	}
)

// ID returns the group:name key of the module.
func (m Module) ID() string { return m.Group + ":" + m.Name }

// Coordinate returns the module's published coordinate.
func (m Module) Coordinate() coordinate.Coordinate {
	return coordinate.Coordinate{Group: m.Group, Artifact: m.Name, Version: m.Version}
}
