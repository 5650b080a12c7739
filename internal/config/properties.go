// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/magiconair/properties"

	"github.com/additionalbeans/buildconv/pkg/convention"
)

// PropertyEnvPrefix prefixes environment variables that supply project
// properties. BUILDCONV_PROP_repo_user sets `repo.user`: underscores become
// dots and the case of the remainder is kept.
const PropertyEnvPrefix = EnvPrefix + "_PROP_"

// ErrInvalidPropertyOverride is returned for a -P value without a name.
var ErrInvalidPropertyOverride = errors.New("invalid property override")

// PropertySources lists where project properties come from. Later sources win.
type PropertySources struct {
	// File is a Java properties file. A missing file contributes nothing.
	File string
	// Environ is the process environment in KEY=VALUE form.
	Environ []string
	// Overrides are -P flags in name=value or bare name form. A bare name sets
	// the property to the empty string, which still counts as present.
	Overrides []string
}

// LoadProperties merges the property sources into a convention.Properties.
// Property values are taken literally; ${...} references are not expanded.
func LoadProperties(src PropertySources) (convention.Properties, error) {
	props := convention.Properties{}

	if src.File != "" {
		if err := loadPropertiesFile(src.File, props); err != nil {
			return nil, fmt.Errorf("%w: reading properties %s: %w", convention.ErrConfiguration, src.File, err)
		}
	}

	for _, kv := range src.Environ {
		rest, ok := strings.CutPrefix(kv, PropertyEnvPrefix)
		if !ok {
			continue
		}
		name, value, _ := strings.Cut(rest, "=")
		if name == "" {
			continue
		}
		props[strings.ReplaceAll(name, "_", ".")] = value
	}

	for _, o := range src.Overrides {
		name, value, _ := strings.Cut(o, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: %q has no property name", ErrInvalidPropertyOverride, o)
		}
		props[name] = value
	}

	return props, nil
}

// loadPropertiesFile adds the entries of path to props. The existence check
// happens here because the loader's IgnoreMissing reports skipped files on
// stderr.
func loadPropertiesFile(path string, props convention.Properties) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	loader := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	p, err := loader.LoadFile(path)
	if err != nil {
		return err
	}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		props[key] = value
	}
	return nil
}
