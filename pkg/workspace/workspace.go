// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"maps"
	"slices"
	"strings"

	"github.com/additionalbeans/buildconv/pkg/convention"
)

const (
	// DefaultFileName is the workspace definition looked up in the project root.
	DefaultFileName = "workspace.cue"
	// ModuleFileName is the per-module definition matched by include globs.
	ModuleFileName = "module.cue"
	// DefaultSnapshotSuffix marks versions that publish to the snapshot repository.
	DefaultSnapshotSuffix = "-SNAPSHOT"
	// UnspecifiedVersion is the placeholder a build tool reports for a module
	// whose version was never set.
	UnspecifiedVersion = "unspecified"
)

// Workspace is a decoded multi-module project definition.
type Workspace struct {
	Group          string                       `json:"group,omitempty"`
	Version        string                       `json:"version,omitempty"`
	BOMSuffix      string                       `json:"bomSuffix,omitempty"`
	SnapshotSuffix string                       `json:"snapshotSuffix,omitempty"`
	Include        []string                     `json:"include,omitempty"`
	Layers         map[string]convention.Layer  `json:"layers,omitempty"`
	Modules        map[string]convention.Module `json:"modules,omitempty"`

	// Root is the directory holding the workspace file.
	Root string `json:"-"`
	// Files lists every definition file that contributed, workspace file first.
	Files []string `json:"-"`
}

// ModuleNames returns the module names sorted.
func (w *Workspace) ModuleNames() []string {
	return slices.Sorted(maps.Keys(w.Modules))
}

// ModuleList returns the modules sorted by name.
func (w *Workspace) ModuleList() []convention.Module {
	out := make([]convention.Module, 0, len(w.Modules))
	for _, name := range w.ModuleNames() {
		out = append(out, w.Modules[name])
	}
	return out
}

// Module returns the named module.
func (w *Workspace) Module(name string) (convention.Module, bool) {
	m, ok := w.Modules[name]
	return m, ok
}

// IsBOM reports whether name carries the workspace's BOM suffix.
func (w *Workspace) IsBOM(name string) bool {
	return strings.HasSuffix(name, w.BOMSuffix)
}

// Platforms returns the modules that publish constraint sets, sorted by name.
func (w *Workspace) Platforms() []convention.Module {
	var out []convention.Module
	for _, m := range w.ModuleList() {
		if m.Platform {
			out = append(out, m)
		}
	}
	return out
}
