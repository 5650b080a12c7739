// SPDX-License-Identifier: MPL-2.0

package locate

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/additionalbeans/buildconv/pkg/coordinate"
	"github.com/additionalbeans/buildconv/pkg/publish"
)

const nginxRoot = "/usr/share/nginx/html/maven-public/"

// checkTestcontainersAvailable reports whether a Docker-compatible engine can
// be reached. Provider detection panics on some hosts without an engine.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestLocator_NginxMavenLayout serves a static Maven layout from nginx and
// verifies the locator against it over real HTTP.
func TestLocator_NginxMavenLayout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("BUILDCONV_INTEGRATION") == "" {
		t.Skip("skipping integration test: set BUILDCONV_INTEGRATION=1 to run")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping integration test: testcontainers provider not available")
	}

	ctx := t.Context()
	pom := `<project><modelVersion>4.0.0</modelVersion></project>`
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nginx:1.27-alpine",
			ExposedPorts: []string{"80/tcp"},
			Files: []testcontainers.ContainerFile{
				{
					Reader:            strings.NewReader(pom),
					ContainerFilePath: nginxRoot + "com/example/widgets/1.2.0/widgets-1.2.0.pom",
					FileMode:          0o644,
				},
			},
			WaitingFor: wait.ForHTTP("/").WithPort("80/tcp"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("starting nginx: %v", err)
	}

	endpoint, err := ctr.PortEndpoint(ctx, "80/tcp", "http")
	if err != nil {
		t.Fatalf("resolving endpoint: %v", err)
	}

	// The same layout publish.FromProperties derives from repo.url.prefix.
	repos := publish.FromProperties(map[string]string{"repo.url.prefix": endpoint}, "")
	l := New(repos.Resolution, Options{})

	report, err := l.Verify(ctx, []Item{
		{Module: "app", Coordinate: coordinate.MustParse("com.example:widgets:1.2.0")},
		{Module: "app", Coordinate: coordinate.MustParse("com.example:gadgets:0.1.0")},
	})
	resErr, ok := errors.AsType[*ResolutionError](err)
	if !ok {
		t.Fatalf("Verify() error = %v, want *ResolutionError", err)
	}
	if len(resErr.Missing) != 1 || resErr.Missing[0].Coordinate.Artifact != "gadgets" {
		t.Errorf("Missing = %+v", resErr.Missing)
	}
	if found := report.Found(); len(found) != 1 || found[0].Repository != "maven-public" {
		t.Errorf("Found() = %+v", found)
	}
}
