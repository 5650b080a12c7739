// SPDX-License-Identifier: MPL-2.0

// Package engine evaluates a workspace into a Plan: the effective
// configuration, test topology, manifest, constraint set and publishing target
// of every module plus the workspace task graph.
package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/additionalbeans/buildconv/internal/locate"
	"github.com/additionalbeans/buildconv/internal/metrics"
	"github.com/additionalbeans/buildconv/pkg/bom"
	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/manifest"
	"github.com/additionalbeans/buildconv/pkg/publish"
	"github.com/additionalbeans/buildconv/pkg/suite"
	"github.com/additionalbeans/buildconv/pkg/taskgraph"
	"github.com/additionalbeans/buildconv/pkg/workspace"
)

// DefaultConcurrency bounds the modules resolved at once.
const DefaultConcurrency = 8

// ErrUnknownModule is returned when a plan has no module of the given name.
var ErrUnknownModule = errors.New("unknown module")

type (
	// Options configures an Engine.
	Options struct {
		Logger      *log.Logger
		Metrics     *metrics.Recorder
		Concurrency int
	}

	// Engine evaluates workspaces. It holds no per-workspace state.
	Engine struct {
		logger      *log.Logger
		metrics     *metrics.Recorder
		concurrency int
	}

	// ModulePlan is everything computed for one module.
	ModulePlan struct {
		Effective *convention.Effective `json:"effective" yaml:"effective"`
		Topology  *suite.Topology       `json:"topology" yaml:"topology"`
		Manifest  manifest.Manifest     `json:"manifest" yaml:"manifest"`
		// Constraints is set for platform modules only.
		Constraints *bom.Set `json:"constraints,omitempty" yaml:"constraints,omitempty"`
		// Publish is nil when the module does not publish or no publishing
		// repository is configured.
		Publish *publish.Target `json:"publish,omitempty" yaml:"publish,omitempty"`
	}

	// Plan is the evaluated workspace.
	Plan struct {
		Context      convention.Context   `json:"-" yaml:"-"`
		Repositories publish.Repositories `json:"repositories" yaml:"repositories"`
		// Modules is sorted by module name.
		Modules []*ModulePlan    `json:"modules" yaml:"modules"`
		Tasks   *taskgraph.Graph `json:"-" yaml:"-"`
	}
)

// New returns an Engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		logger:      logger,
		metrics:     opts.Metrics,
		concurrency: cmp.Or(opts.Concurrency, DefaultConcurrency),
	}
}

// Build evaluates w against props. Modules are resolved concurrently; all
// module errors are reported together, in module order.
func (e *Engine) Build(ctx context.Context, w *workspace.Workspace, props convention.Properties) (*Plan, error) {
	start := time.Now()
	rctx := convention.Context{Properties: props}

	resolver, err := convention.NewResolver(w.Layers, rctx)
	if err != nil {
		return nil, err
	}
	repos := publish.FromProperties(props, w.SnapshotSuffix)
	modules := w.ModuleList()

	plans := make([]*ModulePlan, len(modules))
	errs := make([]error, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, m := range modules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan, err := e.buildModule(resolver, repos, w, modules, m)
			if err != nil {
				errs[i] = fmt.Errorf("module %s: %w", m.Name, err)
				return nil
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	inputs := make([]taskgraph.Module, len(plans))
	for i, p := range plans {
		inputs[i] = taskgraph.Module{Effective: p.Effective, Topology: p.Topology}
	}
	graph, err := taskgraph.Build(inputs)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	e.metrics.ObserveResolution(elapsed)
	e.logger.Debug("workspace evaluated", "modules", len(plans), "properties", rctx, "elapsed", elapsed)

	return &Plan{Context: rctx, Repositories: repos, Modules: plans, Tasks: graph}, nil
}

func (e *Engine) buildModule(
	resolver *convention.Resolver,
	repos publish.Repositories,
	w *workspace.Workspace,
	all []convention.Module,
	m convention.Module,
) (*ModulePlan, error) {
	eff, err := resolver.Resolve(m)
	if err != nil {
		return nil, err
	}
	topo, err := suite.Build(eff)
	if err != nil {
		return nil, err
	}
	plan := &ModulePlan{
		Effective: eff,
		Topology:  topo,
		Manifest:  manifest.For(eff.Module, eff.Version),
	}

	if eff.Platform {
		set, err := bom.Generate(m.Name, all, bom.Options{Suffix: w.BOMSuffix})
		if err != nil {
			return nil, err
		}
		plan.Constraints = set
		e.metrics.ConstraintsEmitted(m.Name, len(set.Constraints))
	}

	if eff.Publishing != nil && repos.Publishable() {
		target, err := repos.Select(eff.Version)
		if err != nil {
			return nil, err
		}
		plan.Publish = &target
	}

	e.metrics.ModuleResolved()
	e.logger.Debug("module resolved", "module", m.Name, "layers", eff.Layers, "platform", eff.Platform)
	return plan, nil
}

// ConstraintSets generates the constraint set of every platform module of w
// without resolving anything else. Watch mode uses it to recompute sets
// cheaply whenever the module list changes.
func ConstraintSets(w *workspace.Workspace) ([]*bom.Set, error) {
	all := w.ModuleList()
	var sets []*bom.Set
	for _, p := range w.Platforms() {
		set, err := bom.Generate(p.Name, all, bom.Options{Suffix: w.BOMSuffix})
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", p.Name, err)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// Module returns the plan of the named module.
func (p *Plan) Module(name string) (*ModulePlan, error) {
	for _, m := range p.Modules {
		if m.Effective.Module == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
}

// Lock returns the constraint sets of every platform module.
func (p *Plan) Lock() *bom.Lock {
	var sets []*bom.Set
	for _, m := range p.Modules {
		if m.Constraints != nil {
			sets = append(sets, m.Constraints)
		}
	}
	return bom.NewLock(sets)
}

// LocateItems lists every external coordinate the workspace declares:
// dependencies, imported platforms and the checkstyle tool. Project
// dependencies are siblings and are not located.
func (p *Plan) LocateItems() []locate.Item {
	var items []locate.Item
	for _, m := range p.Modules {
		eff := m.Effective
		for _, d := range eff.Dependencies {
			if d.IsProject() {
				continue
			}
			items = append(items, locate.Item{Module: eff.Module, Coordinate: d.Coordinate})
		}
		for _, imp := range eff.DependencyManagement.Imports {
			items = append(items, locate.Item{Module: eff.Module, Coordinate: imp})
		}
		if eff.Checkstyle != nil {
			items = append(items, locate.Item{Module: eff.Module, Coordinate: eff.Checkstyle.Tool})
		}
	}
	return items
}
