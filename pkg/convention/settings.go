// SPDX-License-Identifier: MPL-2.0

package convention

import (
	"slices"

	"github.com/additionalbeans/buildconv/pkg/coordinate"
)

type (
	// Settings is one layer's (or one module's) contribution to the effective
	// configuration. Nil scalars are "not declared here" and inherit; lists
	// documented as appending concatenate parent-then-child during Merge.
	//
	// Settings values are treated as immutable: Merge never mutates its inputs.
	Settings struct {
		Java                 *JavaSettings                 `json:"java,omitempty"`
		Checkstyle           *CheckstyleSettings           `json:"checkstyle,omitempty"`
		Architecture         *ArchitectureSettings         `json:"architecture,omitempty"`
		DependencyManagement *DependencyManagementSettings `json:"dependencyManagement,omitempty"`
		Testing              *TestingSettings              `json:"testing,omitempty"`
		Publishing           *PublishingSettings           `json:"publishing,omitempty"`
		// Dependencies appends.
		Dependencies []coordinate.Declaration `json:"dependencies,omitempty"`
		// Plugins appends.
		Plugins []string `json:"plugins,omitempty"`
	}

	// JavaSettings configures compilation.
	JavaSettings struct {
		Release  *int    `json:"release,omitempty"`
		Encoding *string `json:"encoding,omitempty"`
		// CompilerArgs appends.
		CompilerArgs []string `json:"compilerArgs,omitempty"`
		SourcesJar   *bool    `json:"sourcesJar,omitempty"`
	}

	// CheckstyleSettings configures the style checker.
	CheckstyleSettings struct {
		Enabled *bool `json:"enabled,omitempty"`
		// Tool is the versionless checkstyle rule set coordinate.
		Tool *string `json:"tool,omitempty"`
		// ToolVersionProperty names the project property holding Tool's version.
		ToolVersionProperty *string `json:"toolVersionProperty,omitempty"`
	}

	// ArchitectureSettings configures architecture rule enforcement.
	ArchitectureSettings struct {
		// Skip opts the module out entirely.
		Skip *bool `json:"skip,omitempty"`
		// SkipModuleSuffixes appends. Modules whose name ends with any of
		// them are opted out.
		SkipModuleSuffixes []string `json:"skipModuleSuffixes,omitempty"`
		// Rules appends.
		Rules []string `json:"rules,omitempty"`
	}

	// DependencyManagementSettings configures imported platforms.
	DependencyManagementSettings struct {
		// Imports appends.
		Imports                   []string `json:"imports,omitempty"`
		GeneratedPomCustomization *bool    `json:"generatedPomCustomization,omitempty"`
	}

	// TestingSettings configures test suites.
	TestingSettings struct {
		Framework *string `json:"framework,omitempty"`
		// JVMArgs appends.
		JVMArgs []string `json:"jvmArgs,omitempty"`
		// AgentScope names the scope whose dependencies are attached as
		// -javaagent to every test JVM.
		AgentScope  *string              `json:"agentScope,omitempty"`
		Integration *IntegrationSettings `json:"integration,omitempty"`
	}

	// IntegrationSettings configures the secondary test suite.
	IntegrationSettings struct {
		Enabled *bool   `json:"enabled,omitempty"`
		Name    *string `json:"name,omitempty"`
		// ActivationProperty names the project property whose presence adds
		// the suite to default verification.
		ActivationProperty *string `json:"activationProperty,omitempty"`
	}

	// PublishingSettings configures artifact publication.
	PublishingSettings struct {
		Enabled     *bool   `json:"enabled,omitempty"`
		Publication *string `json:"publication,omitempty"`
		// VersionMapping replaces.
		VersionMapping              []VersionMapping `json:"versionMapping,omitempty"`
		SuppressPomMetadataWarnings *bool            `json:"suppressPomMetadataWarnings,omitempty"`
	}

	// VersionMapping chooses how declared versions are rewritten in published
	// metadata for one variant usage.
	VersionMapping struct {
		Usage                string `json:"usage" yaml:"usage"`
		FromResolutionOf     string `json:"fromResolutionOf,omitempty" yaml:"fromResolutionOf,omitempty"`
		FromResolutionResult bool   `json:"fromResolutionResult,omitempty" yaml:"fromResolutionResult,omitempty"`
	}
)

// Merge layers child over parent and returns a new Settings. Scalars declared
// by child win; appending lists concatenate parent-then-child; replacing lists
// are taken from child when child declares them.
func Merge(parent, child Settings) Settings {
	return Settings{
		Java:                 mergeJava(parent.Java, child.Java),
		Checkstyle:           mergeCheckstyle(parent.Checkstyle, child.Checkstyle),
		Architecture:         mergeArchitecture(parent.Architecture, child.Architecture),
		DependencyManagement: mergeDependencyManagement(parent.DependencyManagement, child.DependencyManagement),
		Testing:              mergeTesting(parent.Testing, child.Testing),
		Publishing:           mergePublishing(parent.Publishing, child.Publishing),
		Dependencies:         appendList(parent.Dependencies, child.Dependencies),
		Plugins:              appendList(parent.Plugins, child.Plugins),
	}
}

// MergeAll folds Merge over chain, root first.
func MergeAll(chain ...Settings) Settings {
	var out Settings
	for _, s := range chain {
		out = Merge(out, s)
	}
	return out
}

func mergeJava(p, c *JavaSettings) *JavaSettings {
	if p == nil && c == nil {
		return nil
	}
	p, c = orZero(p), orZero(c)
	return &JavaSettings{
		Release:      override(p.Release, c.Release),
		Encoding:     override(p.Encoding, c.Encoding),
		CompilerArgs: appendList(p.CompilerArgs, c.CompilerArgs),
		SourcesJar:   override(p.SourcesJar, c.SourcesJar),
	}
}

func mergeCheckstyle(p, c *CheckstyleSettings) *CheckstyleSettings {
	if p == nil && c == nil {
		return nil
	}
	p, c = orZero(p), orZero(c)
	return &CheckstyleSettings{
		Enabled:             override(p.Enabled, c.Enabled),
		Tool:                override(p.Tool, c.Tool),
		ToolVersionProperty: override(p.ToolVersionProperty, c.ToolVersionProperty),
	}
}

func mergeArchitecture(p, c *ArchitectureSettings) *ArchitectureSettings {
	if p == nil && c == nil {
		return nil
	}
	p, c = orZero(p), orZero(c)
	return &ArchitectureSettings{
		Skip:               override(p.Skip, c.Skip),
		SkipModuleSuffixes: appendList(p.SkipModuleSuffixes, c.SkipModuleSuffixes),
		Rules:              appendList(p.Rules, c.Rules),
	}
}

func mergeDependencyManagement(p, c *DependencyManagementSettings) *DependencyManagementSettings {
	if p == nil && c == nil {
		return nil
	}
	p, c = orZero(p), orZero(c)
	return &DependencyManagementSettings{
		Imports:                   appendList(p.Imports, c.Imports),
		GeneratedPomCustomization: override(p.GeneratedPomCustomization, c.GeneratedPomCustomization),
	}
}

func mergeTesting(p, c *TestingSettings) *TestingSettings {
	if p == nil && c == nil {
		return nil
	}
	p, c = orZero(p), orZero(c)
	return &TestingSettings{
		Framework:   override(p.Framework, c.Framework),
		JVMArgs:     appendList(p.JVMArgs, c.JVMArgs),
		AgentScope:  override(p.AgentScope, c.AgentScope),
		Integration: mergeIntegration(p.Integration, c.Integration),
	}
}

func mergeIntegration(p, c *IntegrationSettings) *IntegrationSettings {
	if p == nil && c == nil {
		return nil
	}
	p, c = orZero(p), orZero(c)
	return &IntegrationSettings{
		Enabled:            override(p.Enabled, c.Enabled),
		Name:               override(p.Name, c.Name),
		ActivationProperty: override(p.ActivationProperty, c.ActivationProperty),
	}
}

func mergePublishing(p, c *PublishingSettings) *PublishingSettings {
	if p == nil && c == nil {
		return nil
	}
	p, c = orZero(p), orZero(c)
	mapping := slices.Clone(p.VersionMapping)
	if c.VersionMapping != nil {
		mapping = slices.Clone(c.VersionMapping)
	}
	return &PublishingSettings{
		Enabled:                     override(p.Enabled, c.Enabled),
		Publication:                 override(p.Publication, c.Publication),
		VersionMapping:              mapping,
		SuppressPomMetadataWarnings: override(p.SuppressPomMetadataWarnings, c.SuppressPomMetadataWarnings),
	}
}

// override returns a fresh copy of child when declared, else of parent.
func override[T any](parent, child *T) *T {
	src := parent
	if child != nil {
		src = child
	}
	if src == nil {
		return nil
	}
	v := *src
	return &v
}

func appendList[T any](parent, child []T) []T {
	if parent == nil && child == nil {
		return nil
	}
	out := make([]T, 0, len(parent)+len(child))
	out = append(out, parent...)
	return append(out, child...)
}

func orZero[T any](p *T) *T {
	if p == nil {
		return new(T)
	}
	return p
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Ptr returns a pointer to v. Convenient for building Settings literals.
func Ptr[T any](v T) *T { return &v }
