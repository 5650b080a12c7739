// SPDX-License-Identifier: MPL-2.0

package convention

import "github.com/additionalbeans/buildconv/pkg/coordinate"

type (
	// Effective is the fully merged configuration of one module.
	//
	// Optional sections use nil to mean "not applied": a nil Architecture is a
	// module skipped by architecture analysis, which is a different state from
	// a non-nil Architecture with zero rules.
	Effective struct {
		Module   string   `json:"module" yaml:"module"`
		Group    string   `json:"group" yaml:"group"`
		Version  string   `json:"version" yaml:"version"`
		Platform bool     `json:"platform,omitempty" yaml:"platform,omitempty"`
		Layers   []string `json:"layers" yaml:"layers"`

		Java                 JavaConfig                 `json:"java" yaml:"java"`
		Checkstyle           *CheckstyleConfig          `json:"checkstyle,omitempty" yaml:"checkstyle,omitempty"`
		Architecture         *ArchitectureConfig        `json:"architecture,omitempty" yaml:"architecture,omitempty"`
		DependencyManagement DependencyManagementConfig `json:"dependencyManagement" yaml:"dependencyManagement"`
		Testing              TestingConfig              `json:"testing" yaml:"testing"`
		Publishing           *PublishingConfig          `json:"publishing,omitempty" yaml:"publishing,omitempty"`

		Dependencies []coordinate.Dependency `json:"dependencies" yaml:"dependencies"`
		Plugins      []string                `json:"plugins" yaml:"plugins"`
		Suites       map[string]SuiteDecl    `json:"-" yaml:"-"`
	}

	// JavaConfig is the effective compiler configuration.
	JavaConfig struct {
		Release      int      `json:"release" yaml:"release"`
		Encoding     string   `json:"encoding" yaml:"encoding"`
		CompilerArgs []string `json:"compilerArgs" yaml:"compilerArgs"`
		SourcesJar   bool     `json:"sourcesJar" yaml:"sourcesJar"`
	}

	// CheckstyleConfig is the effective style checker configuration.
	CheckstyleConfig struct {
		Tool coordinate.Coordinate `json:"tool" yaml:"tool"`
	}

	// ArchitectureConfig is the effective architecture rule set.
	ArchitectureConfig struct {
		Rules []string `json:"rules" yaml:"rules"`
	}

	// DependencyManagementConfig lists imported platforms.
	DependencyManagementConfig struct {
		Imports                   []coordinate.Coordinate `json:"imports" yaml:"imports"`
		GeneratedPomCustomization bool                    `json:"generatedPomCustomization" yaml:"generatedPomCustomization"`
	}

	// TestingConfig is the effective test configuration.
	TestingConfig struct {
		Framework   string             `json:"framework" yaml:"framework"`
		JVMArgs     []string           `json:"jvmArgs" yaml:"jvmArgs"`
		AgentScope  coordinate.Scope   `json:"agentScope,omitempty" yaml:"agentScope,omitempty"`
		Integration *IntegrationConfig `json:"integration,omitempty" yaml:"integration,omitempty"`
	}

	// IntegrationConfig describes the secondary suite. Active reports whether
	// the activation property was present when the module was resolved.
	IntegrationConfig struct {
		Name               string `json:"name" yaml:"name"`
		ActivationProperty string `json:"activationProperty" yaml:"activationProperty"`
		Active             bool   `json:"active" yaml:"active"`
	}

	// PublishingConfig is the effective publication configuration.
	PublishingConfig struct {
		Publication                 string           `json:"publication" yaml:"publication"`
		VersionMapping              []VersionMapping `json:"versionMapping" yaml:"versionMapping"`
		SuppressPomMetadataWarnings bool             `json:"suppressPomMetadataWarnings" yaml:"suppressPomMetadataWarnings"`
	}
)

// ID returns the group:name key of the module.
func (e *Effective) ID() string { return e.Group + ":" + e.Module }

// Coordinate returns the module's published coordinate.
func (e *Effective) Coordinate() coordinate.Coordinate {
	return coordinate.Coordinate{Group: e.Group, Artifact: e.Module, Version: e.Version}
}

// ArchitectureSkipped reports whether the module is excluded from architecture analysis.
func (e *Effective) ArchitectureSkipped() bool { return e.Architecture == nil }

// DependenciesIn returns the module's dependencies declared in scope s.
func (e *Effective) DependenciesIn(s coordinate.Scope) []coordinate.Dependency {
	var out []coordinate.Dependency
	for _, d := range e.Dependencies {
		if d.Scope == s {
			out = append(out, d)
		}
	}
	return out
}

// ProjectDependencies returns the names of sibling modules this module depends on.
func (e *Effective) ProjectDependencies() []string {
	var out []string
	for _, d := range e.Dependencies {
		if d.IsProject() {
			out = append(out, d.Project)
		}
	}
	return out
}
