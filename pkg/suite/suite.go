// SPDX-License-Identifier: MPL-2.0

// Package suite lays out the test suites of a module: the primary unit suite
// and the optional integration suite that reuses the primary suite's output.
package suite

import (
	"fmt"
	"maps"
	"slices"
	"unicode"

	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/coordinate"
)

const (
	// KindPrimary is the unit test suite every module has.
	KindPrimary Kind = "primary"
	// KindIntegration is the secondary suite gated by the activation property.
	KindIntegration Kind = "integration"

	// MainSourceSet holds production sources.
	MainSourceSet = "main"
)

type (
	// Kind distinguishes the primary suite from the integration suite.
	Kind string

	// Suite is one registered test suite.
	Suite struct {
		Name string `json:"name" yaml:"name"`
		Kind Kind   `json:"kind" yaml:"kind"`
		// Outputs lists the compiled source sets on the suite's compile and
		// runtime classpath in addition to its own sources.
		Outputs []string `json:"outputs" yaml:"outputs"`
		// Dependencies are the suite's own dependencies, in the suite's
		// implementation and runtimeOnly scopes.
		Dependencies []coordinate.Dependency `json:"dependencies" yaml:"dependencies"`
		Framework    string                  `json:"framework" yaml:"framework"`
		JVMArgs      []string                `json:"jvmArgs" yaml:"jvmArgs"`
		// ShouldRunAfter lists suite tasks that must finish first when both
		// run. It orders execution without requesting the other task.
		ShouldRunAfter []string `json:"shouldRunAfter,omitempty" yaml:"shouldRunAfter,omitempty"`
	}

	// Topology is the set of suites of one module.
	Topology struct {
		Module      string `json:"module" yaml:"module"`
		Primary     Suite  `json:"primary" yaml:"primary"`
		Integration *Suite `json:"integration,omitempty" yaml:"integration,omitempty"`
		// IntegrationActive is true when the activation property was present.
		IntegrationActive bool `json:"integrationActive" yaml:"integrationActive"`
	}
)

// Build derives the suite topology from a module's effective configuration.
func Build(eff *convention.Effective) (*Topology, error) {
	jvmArgs := agentArgs(eff)
	jvmArgs = append(jvmArgs, eff.Testing.JVMArgs...)

	topo := &Topology{
		Module: eff.Module,
		Primary: Suite{
			Name:         convention.PrimarySuite,
			Kind:         KindPrimary,
			Outputs:      []string{MainSourceSet},
			Dependencies: primaryDependencies(eff),
			Framework:    eff.Testing.Framework,
			JVMArgs:      jvmArgs,
		},
	}

	for _, name := range slices.Sorted(maps.Keys(eff.Suites)) {
		if name == convention.PrimarySuite {
			continue
		}
		if eff.Testing.Integration == nil || name != eff.Testing.Integration.Name {
			return nil, fmt.Errorf("%w: module %s customizes suite %q which is not registered", convention.ErrConfiguration, eff.Module, name)
		}
	}

	in := eff.Testing.Integration
	if in == nil {
		return topo, nil
	}

	decl := eff.Suites[in.Name]
	deps, err := integrationDependencies(eff, decl)
	if err != nil {
		return nil, err
	}

	outputs := []string{convention.PrimarySuite}
	if decl.IncludeSelf == nil || *decl.IncludeSelf {
		outputs = append(outputs, MainSourceSet)
	}

	topo.Integration = &Suite{
		Name:           in.Name,
		Kind:           KindIntegration,
		Outputs:        outputs,
		Dependencies:   deps,
		Framework:      eff.Testing.Framework,
		JVMArgs:        slices.Clone(jvmArgs),
		ShouldRunAfter: []string{convention.PrimarySuite},
	}
	topo.IntegrationActive = in.Active
	return topo, nil
}

// Suites returns the registered suites, primary first.
func (t *Topology) Suites() []Suite {
	if t.Integration == nil {
		return []Suite{t.Primary}
	}
	return []Suite{t.Primary, *t.Integration}
}

// SourceSets returns every source set of the module, main first.
func (t *Topology) SourceSets() []string {
	out := []string{MainSourceSet}
	for _, s := range t.Suites() {
		out = append(out, s.Name)
	}
	return out
}

// VerificationSuites returns the suites the default verification aggregate
// depends on. The integration suite is registered regardless, but only joins
// verification when the activation property was present.
func (t *Topology) VerificationSuites() []string {
	out := []string{t.Primary.Name}
	if t.Integration != nil && t.IntegrationActive {
		out = append(out, t.Integration.Name)
	}
	return out
}

// SourceSetTaskName builds a per-source-set task name the way Gradle does:
// main takes no infix, and an empty verb puts the source set first.
//
//	("compile", "main", "Java")            compileJava
//	("compile", "integrationTest", "Java") compileIntegrationTestJava
//	("", "main", "Classes")                classes
//	("", "test", "Classes")                testClasses
func SourceSetTaskName(verb, sourceSet, target string) string {
	switch {
	case sourceSet == MainSourceSet && verb == "":
		return lowerFirst(target)
	case sourceSet == MainSourceSet:
		return verb + target
	case verb == "":
		return sourceSet + target
	default:
		return verb + capitalize(sourceSet) + target
	}
}

// CheckstyleTaskName names the checkstyle task of a source set. Unlike
// SourceSetTaskName, main is spelled out: "checkstyleMain".
func CheckstyleTaskName(sourceSet string) string {
	return "checkstyle" + capitalize(sourceSet)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// agentArgs attaches every dependency of the agent scope to the test JVM.
func agentArgs(eff *convention.Effective) []string {
	if eff.Testing.AgentScope == "" {
		return []string{}
	}
	args := []string{}
	for _, d := range eff.DependenciesIn(eff.Testing.AgentScope) {
		args = append(args, "-javaagent:"+d.Coordinate.String())
	}
	return args
}

func primaryDependencies(eff *convention.Effective) []coordinate.Dependency {
	out := []coordinate.Dependency{}
	for _, d := range eff.Dependencies {
		switch d.Scope {
		case coordinate.ScopeTestImplementation:
			out = append(out, d.WithScope(coordinate.ScopeImplementation))
		case coordinate.ScopeTestRuntimeOnly:
			out = append(out, d.WithScope(coordinate.ScopeRuntimeOnly))
		}
	}
	return out
}

// integrationDependencies maps inherited module scopes onto the suite's
// implementation and runtimeOnly scopes, then appends suite-only deps.
func integrationDependencies(eff *convention.Effective, decl convention.SuiteDecl) ([]coordinate.Dependency, error) {
	out := []coordinate.Dependency{}
	for _, scope := range decl.Inherit {
		target := coordinate.ScopeImplementation
		switch scope {
		case coordinate.ScopeImplementation, coordinate.ScopeTestImplementation:
		case coordinate.ScopeTestRuntimeOnly:
			target = coordinate.ScopeRuntimeOnly
		default:
			return nil, fmt.Errorf("%w: module %s: integration suite cannot inherit scope %q", convention.ErrConfiguration, eff.Module, scope)
		}
		for _, d := range eff.DependenciesIn(scope) {
			out = append(out, d.WithScope(target))
		}
	}
	for i, decl := range decl.Dependencies {
		d, err := decl.Resolve()
		if err != nil {
			return nil, fmt.Errorf("%w: module %s: integration dependency #%d: %w", convention.ErrConfiguration, eff.Module, i+1, err)
		}
		if d.Scope != coordinate.ScopeImplementation && d.Scope != coordinate.ScopeRuntimeOnly {
			return nil, fmt.Errorf("%w: module %s: integration dependency %s must use implementation or runtimeOnly",
				convention.ErrConfiguration, eff.Module, d.Notation())
		}
		out = append(out, d)
	}
	return out, nil
}
