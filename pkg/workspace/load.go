// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/cueutil"
)

var (
	//go:embed workspace_schema.cue
	schema []byte

	//go:embed defaults.cue
	defaults []byte

	// ErrDuplicateModule is returned when two definition files declare the same module.
	ErrDuplicateModule = errors.New("duplicate module")
	// ErrUnknownProject is returned when a project dependency names no module.
	ErrUnknownProject = errors.New("unknown project reference")
)

type (
	// LoadOptions configures Load.
	LoadOptions struct {
		// Properties are filled into the CUE `properties` field and supply
		// the group and version when the files leave them unset.
		Properties convention.Properties
		// FS overrides the filesystem used for include globs. Defaults to
		// os.DirFS of the workspace directory.
		FS fs.FS
	}

	// UnknownProjectError names a project dependency that matches no module.
	UnknownProjectError struct {
		Module  string
		Project string
	}

	defaultsFile struct {
		Layers map[string]convention.Layer `json:"layers"`
	}
)

// Error implements the error interface for UnknownProjectError.
func (e *UnknownProjectError) Error() string {
	return fmt.Sprintf("module %s depends on project %q which is not defined in the workspace", e.Module, e.Project)
}

// Unwrap allows errors.Is to match both ErrUnknownProject and convention.ErrConfiguration.
func (e *UnknownProjectError) Unwrap() []error {
	return []error{ErrUnknownProject, convention.ErrConfiguration}
}

// DefaultLayers returns the built-in convention layers.
func DefaultLayers() (map[string]convention.Layer, error) {
	result, err := cueutil.ParseAndDecode[defaultsFile](schema, defaults, "#Defaults", cueutil.WithFilename("defaults.cue"))
	if err != nil {
		return nil, fmt.Errorf("internal error: built-in layers: %w", err)
	}
	return result.Value.Layers, nil
}

// Load reads the workspace file at path, then every module file matched by
// its include globs, and returns the normalized workspace. Invalid
// definitions are configuration errors.
func Load(path string, opts LoadOptions) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workspace: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(absPath)
	if opts.FS == nil {
		opts.FS = os.DirFS(root)
	}

	w, err := parse(data, filepath.Base(path), opts.Properties)
	if err != nil {
		return nil, err
	}
	w.Root = root
	w.Files = []string{absPath}

	if err := w.loadIncludes(opts); err != nil {
		return nil, err
	}
	if err := w.normalize(opts.Properties); err != nil {
		return nil, err
	}
	return w, nil
}

// Parse decodes a workspace definition without following includes. Built-in
// layers are merged in and modules are normalized.
func Parse(data []byte, filename string, props convention.Properties) (*Workspace, error) {
	w, err := parse(data, filename, props)
	if err != nil {
		return nil, err
	}
	if err := w.normalize(props); err != nil {
		return nil, err
	}
	return w, nil
}

func parse(data []byte, filename string, props convention.Properties) (*Workspace, error) {
	result, err := cueutil.ParseAndDecode[Workspace](schema, data, "#Workspace",
		cueutil.WithFilename(filename),
		cueutil.WithFill("properties", propertiesValue(props)),
	)
	if err != nil {
		return nil, configError(err)
	}
	w := result.Value
	if w.Modules == nil {
		w.Modules = make(map[string]convention.Module)
	}

	builtin, err := DefaultLayers()
	if err != nil {
		return nil, err
	}
	layers := maps.Clone(builtin)
	// Workspace layers replace built-in layers of the same name.
	maps.Copy(layers, w.Layers)
	w.Layers = layers

	if w.BOMSuffix == "" {
		w.BOMSuffix = convention.DefaultBOMSuffix
	}
	if w.SnapshotSuffix == "" {
		w.SnapshotSuffix = DefaultSnapshotSuffix
	}
	for name, m := range w.Modules {
		m.Name = name
		w.Modules[name] = m
	}
	return w, nil
}

func (w *Workspace) loadIncludes(opts LoadOptions) error {
	var files []string
	for _, pattern := range w.Include {
		if !doublestar.ValidatePattern(pattern) {
			return configError(fmt.Errorf("include pattern %q is not a valid glob", pattern))
		}
		matches, err := doublestar.Glob(opts.FS, pattern)
		if err != nil {
			return fmt.Errorf("expanding include %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	files = slices.Compact(files)

	for _, rel := range files {
		data, err := fs.ReadFile(opts.FS, rel)
		if err != nil {
			return fmt.Errorf("reading module file: %w", err)
		}
		result, err := cueutil.ParseAndDecode[convention.Module](schema, data, "#ModuleFile",
			cueutil.WithFilename(rel),
			cueutil.WithFill("properties", propertiesValue(opts.Properties)),
		)
		if err != nil {
			return configError(err)
		}
		m := *result.Value
		if _, exists := w.Modules[m.Name]; exists {
			return configError(fmt.Errorf("%w: %s declared again in %s", ErrDuplicateModule, m.Name, rel))
		}
		w.Modules[m.Name] = m
		w.Files = append(w.Files, filepath.Join(w.Root, filepath.FromSlash(rel)))
	}
	return nil
}

// normalize applies workspace defaults to every module and validates
// project references. Module values win over properties, which win over the
// workspace file.
func (w *Workspace) normalize(props convention.Properties) error {
	group := w.Group
	if v, ok := props.Lookup(convention.PropertyGroup); ok && v != "" {
		group = v
	}
	version := w.Version
	if v, ok := props.Lookup(convention.PropertyVersion); ok && v != "" {
		version = v
	}

	for name, m := range w.Modules {
		if m.Group == "" {
			m.Group = group
		}
		if m.Version == "" {
			m.Version = version
		}
		if m.Convention == "" {
			m.Convention = convention.LayerLibrary
		}
		m.Platform = m.Platform || w.IsBOM(name)
		w.Modules[name] = m
	}

	for _, name := range w.ModuleNames() {
		m := w.Modules[name]
		refs := slices.Clone(m.Dependencies)
		for _, s := range m.Suites {
			refs = append(refs, s.Dependencies...)
		}
		for _, d := range refs {
			if d.Project == "" {
				continue
			}
			if _, ok := w.Modules[d.Project]; !ok {
				return &UnknownProjectError{Module: name, Project: d.Project}
			}
		}
	}
	return nil
}

func propertiesValue(props convention.Properties) map[string]string {
	if props == nil {
		return map[string]string{}
	}
	return map[string]string(props)
}

func configError(err error) error {
	return fmt.Errorf("%w: %w", convention.ErrConfiguration, err)
}
