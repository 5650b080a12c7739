// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/coordinate"
)

const starterWorkspace = `
group:   "io.additionalbeans"
version: "1.0.0"

modules: {
	"additional-beans-bom": {}
	"additional-beans-commons": {}
	"additional-beans-jdbc-spring-boot-starter": {
		dependencies: [
			{coordinate: "org.springframework.boot:spring-boot-starter-jdbc", scope: "api"},
			{project: "additional-beans-commons", scope: "implementation"},
		]
	}
}
`

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	w, err := Parse([]byte(starterWorkspace), DefaultFileName, nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := []string{"additional-beans-bom", "additional-beans-commons", "additional-beans-jdbc-spring-boot-starter"}
	if !slices.Equal(w.ModuleNames(), want) {
		t.Errorf("ModuleNames() = %v, want %v", w.ModuleNames(), want)
	}
	if w.BOMSuffix != "-bom" || w.SnapshotSuffix != "-SNAPSHOT" {
		t.Errorf("unexpected suffix defaults: bom=%q snapshot=%q", w.BOMSuffix, w.SnapshotSuffix)
	}

	jdbc, _ := w.Module("additional-beans-jdbc-spring-boot-starter")
	if jdbc.Group != "io.additionalbeans" || jdbc.Version != "1.0.0" {
		t.Errorf("module should inherit group and version, got %s:%s", jdbc.Group, jdbc.Version)
	}
	if jdbc.Convention != convention.LayerLibrary {
		t.Errorf("Convention = %q, want library", jdbc.Convention)
	}
	if jdbc.Name != "additional-beans-jdbc-spring-boot-starter" {
		t.Errorf("Name = %q", jdbc.Name)
	}
	if len(jdbc.Dependencies) != 2 || jdbc.Dependencies[1].Scope != coordinate.ScopeImplementation {
		t.Errorf("unexpected dependencies %+v", jdbc.Dependencies)
	}

	platforms := w.Platforms()
	if len(platforms) != 1 || platforms[0].Name != "additional-beans-bom" {
		t.Errorf("Platforms() = %v, want only the bom module", platforms)
	}

	if _, ok := w.Layers[convention.LayerCommon]; !ok {
		t.Fatal("built-in common layer missing")
	}
	lib := w.Layers[convention.LayerLibrary]
	if lib.Extends != convention.LayerCommon {
		t.Errorf("library should extend common, got %q", lib.Extends)
	}
	if lib.Settings.Publishing == nil || len(lib.Settings.Publishing.VersionMapping) != 2 {
		t.Errorf("library publishing defaults missing: %+v", lib.Settings.Publishing)
	}
}

func TestDefaultLayers_ReproduceCommonConventions(t *testing.T) {
	t.Parallel()

	layers, err := DefaultLayers()
	if err != nil {
		t.Fatalf("DefaultLayers() error: %v", err)
	}
	r, err := convention.NewResolver(layers, convention.Context{
		Properties: convention.Properties{convention.PropertyJavaformatVersion: "0.0.43"},
	})
	if err != nil {
		t.Fatalf("NewResolver() error: %v", err)
	}

	eff, err := r.Resolve(convention.Module{Name: "additional-beans-redis-spring-boot-starter", Convention: convention.LayerLibrary})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if eff.Java.Release != 21 || eff.Java.Encoding != "UTF-8" || !eff.Java.SourcesJar {
		t.Errorf("unexpected java config %+v", eff.Java)
	}
	if !slices.Equal(eff.Java.CompilerArgs, []string{"-parameters"}) {
		t.Errorf("CompilerArgs = %v", eff.Java.CompilerArgs)
	}
	if eff.Architecture == nil || len(eff.Architecture.Rules) != 8 {
		t.Errorf("expected 8 architecture rules, got %+v", eff.Architecture)
	}
	if eff.Checkstyle == nil || eff.Checkstyle.Tool.Version != "0.0.43" {
		t.Errorf("unexpected checkstyle %+v", eff.Checkstyle)
	}
	if eff.DependencyManagement.GeneratedPomCustomization {
		t.Error("generated POM customization should be disabled")
	}
	if eff.Publishing == nil || !eff.Publishing.SuppressPomMetadataWarnings {
		t.Errorf("publishing should suppress POM metadata warnings, got %+v", eff.Publishing)
	}
	agents := eff.DependenciesIn(coordinate.ScopeAgent)
	if len(agents) != 1 || agents[0].Transitive {
		t.Errorf("expected one non-transitive agent dependency, got %+v", agents)
	}
	if !slices.Contains(eff.Plugins, "maven-publish") || !slices.Contains(eff.Plugins, "java") {
		t.Errorf("plugins should accumulate across the chain, got %v", eff.Plugins)
	}

	bom, err := r.Resolve(convention.Module{Name: "additional-beans-bom", Convention: convention.LayerLibrary})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if !bom.ArchitectureSkipped() {
		t.Error("bom module must be skipped by architecture analysis")
	}
}

func TestParse_PropertiesSupplyVersion(t *testing.T) {
	t.Parallel()

	data := []byte(`
properties: [string]: string
group: "io.additionalbeans"
modules: {
	"starter": {}
	"pinned": {version: "0.9.0"}
	"templated": {version: properties["templated.version"]}
}
`)
	props := convention.Properties{"version": "2.3.0-SNAPSHOT", "templated.version": "7.0.0"}
	w, err := Parse(data, DefaultFileName, props)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	tests := map[string]string{"starter": "2.3.0-SNAPSHOT", "pinned": "0.9.0", "templated": "7.0.0"}
	for name, want := range tests {
		if got := w.Modules[name].Version; got != want {
			t.Errorf("%s version = %q, want %q", name, got, want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		target error
	}{
		{
			name:   "unknown project",
			data:   `modules: a: dependencies: [{project: "missing", scope: "implementation"}]`,
			target: ErrUnknownProject,
		},
		{
			name:   "invalid scope",
			data:   `modules: a: dependencies: [{coordinate: "g:a", scope: "compile"}]`,
			target: convention.ErrConfiguration,
		},
		{
			name:   "unknown field",
			data:   `modules: a: flavour: "vanilla"`,
			target: convention.ErrConfiguration,
		},
		{
			name: "unset property reference",
			data: `
properties: [string]: string
modules: a: version: properties["missing"]
`,
			target: convention.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data), DefaultFileName, nil)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestParse_WorkspaceLayerReplacesBuiltin(t *testing.T) {
	t.Parallel()

	data := []byte(`
layers: common: settings: java: release: 17
modules: a: {}
`)
	w, err := Parse(data, DefaultFileName, nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	common := w.Layers[convention.LayerCommon]
	if common.Settings.Java == nil || *common.Settings.Java.Release != 17 {
		t.Fatalf("workspace common layer should replace the built-in one, got %+v", common.Settings.Java)
	}
	if common.Settings.Checkstyle != nil {
		t.Error("replacement is wholesale; built-in checkstyle must not survive")
	}
	if _, ok := w.Layers[convention.LayerLibrary]; !ok {
		t.Error("untouched built-in library layer should remain")
	}
}

func TestLoad_Includes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), `
group: "io.additionalbeans"
version: "1.0.0"
include: ["starters/**/module.cue"]
modules: "additional-beans-bom": {}
`)
	writeFile(t, filepath.Join(dir, "starters", "kafka", ModuleFileName), `
name: "additional-beans-kafka-spring-boot-starter"
dependencies: [{coordinate: "org.springframework.kafka:spring-kafka", scope: "implementation"}]
`)
	writeFile(t, filepath.Join(dir, "starters", "redis", ModuleFileName), `
name: "additional-beans-redis-spring-boot-starter"
suites: integrationTest: {
	inherit: ["implementation", "testImplementation", "testRuntimeOnly"]
	dependencies: [{coordinate: "org.testcontainers:junit-jupiter", scope: "implementation"}]
}
`)

	w, err := Load(filepath.Join(dir, DefaultFileName), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(w.Modules) != 3 {
		t.Fatalf("expected 3 modules, got %v", w.ModuleNames())
	}
	if len(w.Files) != 3 {
		t.Errorf("expected 3 contributing files, got %v", w.Files)
	}
	redis := w.Modules["additional-beans-redis-spring-boot-starter"]
	if redis.Version != "1.0.0" {
		t.Errorf("included module should inherit version, got %q", redis.Version)
	}
	suite, ok := redis.Suites[convention.DefaultIntegrationSuite]
	if !ok || len(suite.Inherit) != 3 {
		t.Errorf("unexpected integration suite declaration %+v", redis.Suites)
	}
}

func TestLoad_DuplicateModule(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"a/module.cue": {Data: []byte(`name: "dup"`)},
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), `
include: ["*/module.cue"]
modules: dup: {}
`)

	_, err := Load(filepath.Join(dir, DefaultFileName), LoadOptions{FS: fsys})
	if !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("expected ErrDuplicateModule, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
