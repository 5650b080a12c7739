// SPDX-License-Identifier: MPL-2.0

package convention

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/additionalbeans/buildconv/internal/dag"
	"github.com/additionalbeans/buildconv/pkg/coordinate"
)

type (
	// Context carries the external signals of one build invocation into
	// resolution. Resolution never reads the environment itself.
	Context struct {
		Properties Properties
	}

	// Resolver merges layer chains into effective module configurations.
	// A Resolver is immutable after NewResolver and safe for concurrent use.
	Resolver struct {
		layers map[string]Layer
		ctx    Context
		// chains holds each layer's chain, root first.
		chains map[string][]string
		// merged holds each layer's fully merged settings.
		merged map[string]Settings
	}
)

// NewResolver validates the layer set and precomputes every chain. Each layer
// is merged only after its parent is fully merged. An unknown parent or an
// extends cycle is a configuration error.
func NewResolver(layers map[string]Layer, ctx Context) (*Resolver, error) {
	g := dag.New()
	for _, name := range slices.Sorted(maps.Keys(layers)) {
		g.AddNode(name)
		parent := layers[name].Extends
		if parent == "" {
			continue
		}
		if _, ok := layers[parent]; !ok {
			return nil, &UnknownLayerError{Layer: parent, ReferencedBy: "layer " + name}
		}
		g.AddEdge(parent, name)
	}

	order, err := g.TopologicalSort()
	if err != nil {
		if cycleErr, ok := errors.AsType[*dag.CycleError](err); ok {
			return nil, &LayerCycleError{Layers: cycleErr.Cycle}
		}
		return nil, configurationError("ordering convention layers: %w", err)
	}

	r := &Resolver{
		layers: maps.Clone(layers),
		ctx:    ctx,
		chains: make(map[string][]string, len(layers)),
		merged: make(map[string]Settings, len(layers)),
	}
	for _, name := range order {
		layer := layers[name]
		if layer.Extends == "" {
			r.chains[name] = []string{name}
			r.merged[name] = Merge(Settings{}, layer.Settings)
			continue
		}
		r.chains[name] = append(slices.Clone(r.chains[layer.Extends]), name)
		r.merged[name] = Merge(r.merged[layer.Extends], layer.Settings)
	}
	return r, nil
}

// Context returns the build context the resolver was created with.
func (r *Resolver) Context() Context { return r.ctx }

// Layers returns the defined layer names, sorted.
func (r *Resolver) Layers() []string { return slices.Sorted(maps.Keys(r.layers)) }

// Chain returns the layer chain of name, root first.
func (r *Resolver) Chain(name string) ([]string, error) {
	chain, ok := r.chains[name]
	if !ok {
		return nil, &UnknownLayerError{Layer: name, ReferencedBy: "lookup"}
	}
	return slices.Clone(chain), nil
}

// LayerSettings returns the fully merged settings of the named layer.
func (r *Resolver) LayerSettings(name string) (Settings, error) {
	s, ok := r.merged[name]
	if !ok {
		return Settings{}, &UnknownLayerError{Layer: name, ReferencedBy: "lookup"}
	}
	return Merge(Settings{}, s), nil
}

// Resolve produces the effective configuration of m: its layer chain merged
// root first, then the module's own settings and dependencies on top.
func (r *Resolver) Resolve(m Module) (*Effective, error) {
	if m.Name == "" {
		return nil, configurationError("module name is required")
	}
	base, ok := r.merged[m.Convention]
	if !ok {
		return nil, &UnknownLayerError{Layer: m.Convention, ReferencedBy: "module " + m.Name}
	}

	s := Merge(base, m.Settings)
	s.Dependencies = appendList(s.Dependencies, m.Dependencies)

	eff := &Effective{
		Module:   m.Name,
		Group:    m.Group,
		Version:  m.Version,
		Platform: m.Platform,
		Layers:   slices.Clone(r.chains[m.Convention]),
		Plugins:  nonNil(s.Plugins),
		Suites:   maps.Clone(m.Suites),
	}

	eff.Java = resolveJava(s.Java)

	checkstyle, err := r.resolveCheckstyle(m.Name, s.Checkstyle)
	if err != nil {
		return nil, err
	}
	eff.Checkstyle = checkstyle

	// Platform modules only carry constraints; there is no code to analyze.
	if !m.Platform {
		eff.Architecture = resolveArchitecture(m.Name, s.Architecture)
	}

	eff.DependencyManagement, err = resolveDependencyManagement(m.Name, s.DependencyManagement)
	if err != nil {
		return nil, err
	}

	eff.Testing = r.resolveTesting(s.Testing)
	eff.Publishing = resolvePublishing(s.Publishing)

	deps, err := resolveDependencies(m.Name, s.Dependencies)
	if err != nil {
		return nil, err
	}
	eff.Dependencies = deps

	return eff, nil
}

func resolveJava(j *JavaSettings) JavaConfig {
	j = orZero(j)
	return JavaConfig{
		Release:      deref(j.Release, 0),
		Encoding:     deref(j.Encoding, ""),
		CompilerArgs: nonNil(j.CompilerArgs),
		SourcesJar:   deref(j.SourcesJar, false),
	}
}

func (r *Resolver) resolveCheckstyle(module string, c *CheckstyleSettings) (*CheckstyleConfig, error) {
	if c == nil || !deref(c.Enabled, true) {
		return nil, nil
	}
	if c.Tool == nil || *c.Tool == "" {
		return nil, configurationError("module %s: checkstyle is enabled but no tool coordinate is configured", module)
	}
	tool, err := coordinate.Parse(*c.Tool)
	if err != nil {
		return nil, configurationError("module %s: checkstyle tool: %w", module, err)
	}
	if tool.HasVersion() {
		return &CheckstyleConfig{Tool: tool}, nil
	}

	prop := deref(c.ToolVersionProperty, PropertyJavaformatVersion)
	v, ok := r.ctx.Properties.Lookup(prop)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, &UnsetPropertyError{Property: prop, Module: module, Purpose: "checkstyle tool version"}
	}
	return &CheckstyleConfig{Tool: tool.WithVersion(v)}, nil
}

func resolveArchitecture(module string, a *ArchitectureSettings) *ArchitectureConfig {
	if a == nil || deref(a.Skip, false) {
		return nil
	}
	for _, suffix := range a.SkipModuleSuffixes {
		if suffix != "" && strings.HasSuffix(module, suffix) {
			return nil
		}
	}
	return &ArchitectureConfig{Rules: nonNil(a.Rules)}
}

func resolveDependencyManagement(module string, d *DependencyManagementSettings) (DependencyManagementConfig, error) {
	d = orZero(d)
	out := DependencyManagementConfig{
		Imports:                   []coordinate.Coordinate{},
		GeneratedPomCustomization: deref(d.GeneratedPomCustomization, true),
	}
	seen := make(map[string]bool, len(d.Imports))
	for _, imp := range d.Imports {
		c, err := coordinate.Parse(imp)
		if err != nil {
			return DependencyManagementConfig{}, configurationError("module %s: dependency management import: %w", module, err)
		}
		if seen[c.String()] {
			continue
		}
		seen[c.String()] = true
		out.Imports = append(out.Imports, c)
	}
	return out, nil
}

func (r *Resolver) resolveTesting(t *TestingSettings) TestingConfig {
	t = orZero(t)
	out := TestingConfig{
		Framework:  deref(t.Framework, ""),
		JVMArgs:    nonNil(t.JVMArgs),
		AgentScope: coordinate.Scope(deref(t.AgentScope, "")),
	}
	in := t.Integration
	if in == nil || !deref(in.Enabled, false) {
		return out
	}
	prop := deref(in.ActivationProperty, PropertyIntegration)
	out.Integration = &IntegrationConfig{
		Name:               deref(in.Name, DefaultIntegrationSuite),
		ActivationProperty: prop,
		Active:             r.ctx.Properties.Present(prop),
	}
	return out
}

func resolvePublishing(p *PublishingSettings) *PublishingConfig {
	if p == nil || !deref(p.Enabled, true) {
		return nil
	}
	return &PublishingConfig{
		Publication:                 deref(p.Publication, "mavenJava"),
		VersionMapping:              nonNil(p.VersionMapping),
		SuppressPomMetadataWarnings: deref(p.SuppressPomMetadataWarnings, false),
	}
}

func resolveDependencies(module string, decls []coordinate.Declaration) ([]coordinate.Dependency, error) {
	out := make([]coordinate.Dependency, 0, len(decls))
	for i, decl := range decls {
		dep, err := decl.Resolve()
		if err != nil {
			return nil, configurationError("module %s: dependency #%d: %w", module, i+1, err)
		}
		if dep.IsProject() && dep.Project == module {
			return nil, configurationError("module %s: dependency #%d references the module itself", module, i+1)
		}
		out = append(out, dep)
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

// String renders a short description of the context for logs.
func (c Context) String() string {
	return fmt.Sprintf("properties=%d", len(c.Properties))
}
