// SPDX-License-Identifier: MPL-2.0

// Package publish chooses the artifact repositories a module resolves from
// and publishes to.
package publish

import (
	"cmp"
	"errors"
	"strings"

	"github.com/additionalbeans/buildconv/pkg/convention"
)

const (
	// DefaultSnapshotSuffix marks unstable versions.
	DefaultSnapshotSuffix = "-SNAPSHOT"

	// MavenCentralURL is the default public resolution repository.
	MavenCentralURL = "https://repo.maven.apache.org/maven2/"
	// SpringMilestoneURL is the default milestone resolution repository.
	SpringMilestoneURL = "https://repo.spring.io/milestone"

	publicPath    = "/maven-public/"
	snapshotsPath = "/maven-snapshots/"
	releasesPath  = "/maven-releases/"
)

// ErrNoPublishRepository is returned when no repository prefix is configured,
// so a module has no remote publishing target.
var ErrNoPublishRepository = errors.New("no publishing repository configured")

type (
	// Credentials authenticate against the repository manager.
	Credentials struct {
		Username string `json:"username,omitempty" yaml:"username,omitempty"`
		Password string `json:"-" yaml:"-"`
	}

	// Repository is one Maven repository endpoint.
	Repository struct {
		Name string `json:"name" yaml:"name"`
		URL  string `json:"url" yaml:"url"`
		// AllowInsecureProtocol permits plain HTTP.
		AllowInsecureProtocol bool         `json:"allowInsecureProtocol,omitempty" yaml:"allowInsecureProtocol,omitempty"`
		Credentials           *Credentials `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	}

	// Repositories is the repository layout derived from project properties.
	Repositories struct {
		// Resolution is searched in order when locating dependencies.
		Resolution []Repository `json:"resolution" yaml:"resolution"`
		// Snapshot and Release are nil when no prefix is configured.
		Snapshot *Repository `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
		Release  *Repository `json:"release,omitempty" yaml:"release,omitempty"`
		// SnapshotSuffix selects Snapshot over Release.
		SnapshotSuffix string `json:"snapshotSuffix" yaml:"snapshotSuffix"`
	}

	// Target is the outcome of selecting a publishing repository.
	Target struct {
		Version    string     `json:"version" yaml:"version"`
		Snapshot   bool       `json:"snapshot" yaml:"snapshot"`
		Repository Repository `json:"repository" yaml:"repository"`
	}
)

// FromProperties derives the repository layout. With repoUrlPrefix present,
// resolution and both publishing repositories hang off the prefix, allow
// insecure protocols, and publishing carries repoUser/repoPassword. Without
// it, resolution uses public repositories and nothing can be published.
func FromProperties(props convention.Properties, snapshotSuffix string) Repositories {
	repos := Repositories{SnapshotSuffix: cmp.Or(snapshotSuffix, DefaultSnapshotSuffix)}

	prefix, ok := props.Lookup(convention.PropertyRepoURLPrefix)
	if !ok || strings.TrimSpace(prefix) == "" {
		repos.Resolution = []Repository{
			{Name: "MavenCentral", URL: MavenCentralURL},
			{Name: "SpringMilestone", URL: SpringMilestoneURL},
		}
		return repos
	}
	prefix = strings.TrimRight(prefix, "/")

	repos.Resolution = []Repository{{Name: "maven-public", URL: prefix + publicPath, AllowInsecureProtocol: true}}

	creds := &Credentials{
		Username: props.Get(convention.PropertyRepoUser),
		Password: props.Get(convention.PropertyRepoPassword),
	}
	repos.Snapshot = &Repository{Name: "maven-snapshots", URL: prefix + snapshotsPath, AllowInsecureProtocol: true, Credentials: creds}
	repos.Release = &Repository{Name: "maven-releases", URL: prefix + releasesPath, AllowInsecureProtocol: true, Credentials: creds}
	return repos
}

// IsSnapshot reports whether version ends with suffix. The check is a plain,
// case-sensitive suffix match; an empty suffix falls back to "-SNAPSHOT".
func IsSnapshot(version, suffix string) bool {
	return strings.HasSuffix(version, cmp.Or(suffix, DefaultSnapshotSuffix))
}

// Select picks the publishing repository for version.
func (r Repositories) Select(version string) (Target, error) {
	if r.Snapshot == nil || r.Release == nil {
		return Target{}, ErrNoPublishRepository
	}
	snap := IsSnapshot(version, r.SnapshotSuffix)
	repo := *r.Release
	if snap {
		repo = *r.Snapshot
	}
	return Target{Version: version, Snapshot: snap, Repository: repo}, nil
}

// Publishable reports whether a remote publishing target exists.
func (r Repositories) Publishable() bool { return r.Snapshot != nil && r.Release != nil }
