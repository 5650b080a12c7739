// SPDX-License-Identifier: MPL-2.0

// Package taskgraph builds the per-module build task graph implied by the
// effective conventions and plans execution order for requested tasks.
//
// Two relations exist between tasks. DependsOn pulls the other task into a
// plan and orders it first. ShouldRunAfter only orders: it never pulls a task
// in and is dropped when honoring it would create a cycle.
package taskgraph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/additionalbeans/buildconv/internal/dag"
	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/suite"
)

// Well-known task names.
const (
	TaskCompileJava = "compileJava"
	TaskClasses     = "classes"
	TaskJar         = "jar"
	TaskSourcesJar  = "sourcesJar"
	TaskAssemble    = "assemble"
	TaskCheckstyle  = "checkstyle"
	TaskArchUnit    = "archUnit"
	TaskCheck       = "check"
	TaskBuild       = "build"
	TaskPublish     = "publish"
)

var (
	// ErrUnknownTask is returned when a requested task matches nothing.
	ErrUnknownTask = errors.New("unknown task")
	// ErrTaskCycle is returned when dependsOn relations form a cycle.
	ErrTaskCycle = errors.New("task dependency cycle")
)

type (
	// Task is one node of the graph, addressed by its path ":module:name".
	Task struct {
		Path           string   `json:"path" yaml:"path"`
		Module         string   `json:"module" yaml:"module"`
		Name           string   `json:"name" yaml:"name"`
		Group          string   `json:"group,omitempty" yaml:"group,omitempty"`
		Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
		DependsOn      []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
		ShouldRunAfter []string `json:"shouldRunAfter,omitempty" yaml:"shouldRunAfter,omitempty"`
	}

	// Module is the input for one module's tasks.
	Module struct {
		Effective *convention.Effective
		Topology  *suite.Topology
	}

	// Graph holds every task of a workspace. It is immutable after Build.
	Graph struct {
		tasks map[string]*Task
		order []string
		deps  *dag.Graph
	}

	// CycleError lists the tasks that depend on each other in a cycle.
	CycleError struct {
		Tasks []string
	}
)

// Error implements the error interface for CycleError.
func (e *CycleError) Error() string {
	return fmt.Sprintf("tasks depend on each other in a cycle: %s", strings.Join(e.Tasks, ", "))
}

// Unwrap allows errors.Is to match both ErrTaskCycle and convention.ErrConfiguration.
func (e *CycleError) Unwrap() []error { return []error{ErrTaskCycle, convention.ErrConfiguration} }

// Path returns the task path ":module:name".
func Path(module, name string) string { return ":" + module + ":" + name }

// Build creates the tasks of every module. Modules are processed in the
// given order, which also fixes the tie-break order of plans.
func Build(modules []Module) (*Graph, error) {
	g := &Graph{tasks: make(map[string]*Task), deps: dag.New()}

	known := make(map[string]bool, len(modules))
	for _, m := range modules {
		known[m.Effective.Module] = true
	}

	for _, m := range modules {
		for _, dep := range m.Effective.ProjectDependencies() {
			if !known[dep] {
				return nil, fmt.Errorf("%w: module %s depends on unknown project %q", convention.ErrConfiguration, m.Effective.Module, dep)
			}
		}
		newModuleTasks(g, m).add()
	}

	for _, path := range g.order {
		for _, dep := range g.tasks[path].DependsOn {
			if _, ok := g.tasks[dep]; !ok {
				return nil, fmt.Errorf("internal error: task %s depends on undefined task %s", path, dep)
			}
			g.deps.AddEdge(dep, path)
		}
	}
	if _, err := g.deps.TopologicalSort(); err != nil {
		if cycleErr, ok := errors.AsType[*dag.CycleError](err); ok {
			return nil, &CycleError{Tasks: cycleErr.Cycle}
		}
		return nil, err
	}
	return g, nil
}

// Task returns the task at path.
func (g *Graph) Task(path string) (Task, bool) {
	t, ok := g.tasks[path]
	if !ok {
		return Task{}, false
	}
	return t.clone(), true
}

// Tasks returns every task in creation order.
func (g *Graph) Tasks() []Task {
	out := make([]Task, 0, len(g.order))
	for _, p := range g.order {
		out = append(out, g.tasks[p].clone())
	}
	return out
}

// Has reports whether the graph contains path.
func (g *Graph) Has(path string) bool {
	_, ok := g.tasks[path]
	return ok
}

// Match resolves a task selector. A selector starting with ':' is a task
// path; a bare name selects that task in every module that has it.
func (g *Graph) Match(selector string) ([]string, error) {
	if strings.HasPrefix(selector, ":") {
		if !g.Has(selector) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, selector)
		}
		return []string{selector}, nil
	}
	var out []string
	for _, p := range g.order {
		if g.tasks[p].Name == selector {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, selector)
	}
	return out, nil
}

// Plan returns the execution order of the requested tasks together with
// everything they depend on. ShouldRunAfter relations are honored between
// tasks that are both in the plan.
func (g *Graph) Plan(selectors ...string) ([]string, error) {
	selected := make(map[string]bool)
	var stack []string
	for _, sel := range selectors {
		paths, err := g.Match(sel)
		if err != nil {
			return nil, err
		}
		stack = append(stack, paths...)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if selected[p] {
			continue
		}
		selected[p] = true
		stack = append(stack, g.tasks[p].DependsOn...)
	}

	plan := dag.New()
	for _, p := range g.order {
		if !selected[p] {
			continue
		}
		plan.AddNode(p)
		for _, dep := range g.tasks[p].DependsOn {
			plan.AddEdge(dep, p)
		}
	}
	for _, p := range g.order {
		if !selected[p] {
			continue
		}
		for _, before := range g.tasks[p].ShouldRunAfter {
			if !selected[before] || plan.Reaches(p, before) || p == before {
				continue
			}
			plan.AddEdge(before, p)
		}
	}

	order, err := plan.TopologicalSort()
	if err != nil {
		if cycleErr, ok := errors.AsType[*dag.CycleError](err); ok {
			return nil, &CycleError{Tasks: cycleErr.Cycle}
		}
		return nil, err
	}
	return order, nil
}

func (t *Task) clone() Task {
	c := *t
	c.DependsOn = slices.Clone(t.DependsOn)
	c.ShouldRunAfter = slices.Clone(t.ShouldRunAfter)
	return c
}
