// SPDX-License-Identifier: MPL-2.0

package convention

import (
	"maps"
	"slices"
)

const (
	// PropertyIntegration activates integration suites in default verification.
	// Only its presence matters; the value is ignored.
	PropertyIntegration = "integration"
	// PropertyRepoURLPrefix switches resolution and publishing to an internal
	// repository manager.
	PropertyRepoURLPrefix = "repoUrlPrefix"
	// PropertyRepoUser is the publishing username, used only with PropertyRepoURLPrefix.
	PropertyRepoUser = "repoUser"
	// PropertyRepoPassword is the publishing password, used only with PropertyRepoURLPrefix.
	PropertyRepoPassword = "repoPassword"
	// PropertyVersion overrides the workspace version.
	PropertyVersion = "version"
	// PropertyGroup overrides the workspace group.
	PropertyGroup = "group"
	// PropertyJavaformatVersion pins the checkstyle rule set version.
	PropertyJavaformatVersion = "javaformat-plugin.version"
)

// Properties are the build's project-level properties. A key that is present
// with an empty value is distinct from an absent key.
type Properties map[string]string

// Lookup returns the value of key and whether it is present.
func (p Properties) Lookup(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Present reports whether key is defined, regardless of its value.
func (p Properties) Present(key string) bool {
	_, ok := p[key]
	return ok
}

// Get returns the value of key, or "" when absent.
func (p Properties) Get(key string) string { return p[key] }

// With returns a copy of p with key set to value.
func (p Properties) With(key, value string) Properties {
	out := maps.Clone(p)
	if out == nil {
		out = Properties{}
	}
	out[key] = value
	return out
}

// Keys returns the property names sorted.
func (p Properties) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}
