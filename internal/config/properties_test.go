// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/magiconair/properties"

	"github.com/additionalbeans/buildconv/pkg/convention"
)

func TestLoadProperties_Precedence(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "build.properties")
	content := "version=1.0.0-SNAPSHOT\n" +
		"repo.url.prefix=http://nexus.local/repository\n" +
		"javaformat-plugin.version=0.0.43\n" +
		"literal=${version}\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	props, err := LoadProperties(PropertySources{
		File: file,
		Environ: []string{
			"PATH=/usr/bin",
			"BUILDCONV_PROP_repo_user=ci",
			"BUILDCONV_PROP_version=1.0.0",
		},
		Overrides: []string{"version=2.0.0", "integration"},
	})
	if err != nil {
		t.Fatalf("LoadProperties() error = %v", err)
	}

	want := map[string]string{
		"version":                   "2.0.0",
		"repo.url.prefix":           "http://nexus.local/repository",
		"repo.user":                 "ci",
		"javaformat-plugin.version": "0.0.43",
		"literal":                   "${version}",
		"integration":               "",
	}
	for k, v := range want {
		if got, ok := props.Lookup(k); !ok || got != v {
			t.Errorf("%s = %q (present %v), want %q", k, got, ok, v)
		}
	}
	if _, ok := props.Lookup("PATH"); ok {
		t.Error("unprefixed environment leaked into properties")
	}
	if !props.Present(convention.PropertyIntegration) {
		t.Error("bare -P integration must count as present")
	}
}

func TestLoadProperties_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	props, err := LoadProperties(PropertySources{File: filepath.Join(t.TempDir(), "absent.properties")})
	if err != nil {
		t.Fatalf("LoadProperties() error = %v", err)
	}
	if len(props) != 0 {
		t.Errorf("props = %v, want empty", props)
	}
}

// Not parallel: it swaps the loader's package-level log handler.
func TestLoadProperties_MissingFileIsSilent(t *testing.T) {
	var logged []string
	orig := properties.LogPrintf
	properties.LogPrintf = func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}
	t.Cleanup(func() { properties.LogPrintf = orig })

	if _, err := LoadProperties(PropertySources{File: filepath.Join(t.TempDir(), DefaultPropertiesFile)}); err != nil {
		t.Fatalf("LoadProperties() error = %v", err)
	}
	if len(logged) != 0 {
		t.Errorf("missing file should not be logged, got %q", logged)
	}
}

func TestLoadProperties_UnreadableFileIsConfigurationError(t *testing.T) {
	t.Parallel()

	// A directory exists but cannot be loaded as a properties file.
	_, err := LoadProperties(PropertySources{File: t.TempDir()})
	if !errors.Is(err, convention.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
}

func TestLoadProperties_EmptyOverrideName(t *testing.T) {
	t.Parallel()

	_, err := LoadProperties(PropertySources{Overrides: []string{"=x"}})
	if !errors.Is(err, ErrInvalidPropertyOverride) {
		t.Fatalf("error = %v, want ErrInvalidPropertyOverride", err)
	}
}
