// SPDX-License-Identifier: MPL-2.0

package suite

import (
	"errors"
	"slices"
	"testing"

	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/coordinate"
)

func effective(active bool, suites map[string]convention.SuiteDecl) *convention.Effective {
	return &convention.Effective{
		Module: "additional-beans-redis-spring-boot-starter",
		Testing: convention.TestingConfig{
			Framework:  "junit-jupiter",
			JVMArgs:    []string{"-Xshare:off"},
			AgentScope: coordinate.ScopeAgent,
			Integration: &convention.IntegrationConfig{
				Name:               convention.DefaultIntegrationSuite,
				ActivationProperty: convention.PropertyIntegration,
				Active:             active,
			},
		},
		Dependencies: []coordinate.Dependency{
			{Coordinate: coordinate.MustParse("org.springframework.boot:spring-boot-starter-data-redis"), Scope: coordinate.ScopeAPI, Transitive: true},
			{Coordinate: coordinate.MustParse("io.lettuce:lettuce-core"), Scope: coordinate.ScopeImplementation, Transitive: true},
			{Coordinate: coordinate.MustParse("redis.clients:jedis"), Scope: coordinate.ScopeTestImplementation, Transitive: true},
			{Coordinate: coordinate.MustParse("org.junit.platform:junit-platform-launcher"), Scope: coordinate.ScopeTestRuntimeOnly, Transitive: true},
			{Coordinate: coordinate.MustParse("org.mockito:mockito-core"), Scope: coordinate.ScopeAgent},
		},
		Suites: suites,
	}
}

func TestBuild_VerificationDependsOnActivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		active bool
		want   []string
	}{
		{name: "signal unset", active: false, want: []string{"test"}},
		{name: "signal set", active: true, want: []string{"test", "integrationTest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			topo, err := Build(effective(tt.active, nil))
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if topo.Integration == nil {
				t.Fatal("integration suite must exist regardless of the signal")
			}
			if got := topo.VerificationSuites(); !slices.Equal(got, tt.want) {
				t.Errorf("VerificationSuites() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuild_IntegrationReusesPrimaryOutput(t *testing.T) {
	t.Parallel()

	topo, err := Build(effective(false, nil))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	in := topo.Integration
	if !slices.Equal(in.Outputs, []string{"test", "main"}) {
		t.Errorf("Outputs = %v, want [test main]", in.Outputs)
	}
	if !slices.Equal(in.ShouldRunAfter, []string{"test"}) {
		t.Errorf("ShouldRunAfter = %v, want [test]", in.ShouldRunAfter)
	}
	if len(in.Dependencies) != 0 {
		t.Errorf("without inheritance the suite has no dependencies of its own, got %v", in.Dependencies)
	}
	if !slices.Equal(topo.SourceSets(), []string{"main", "test", "integrationTest"}) {
		t.Errorf("SourceSets() = %v", topo.SourceSets())
	}
}

func TestBuild_JVMArgsAttachAgentsFirst(t *testing.T) {
	t.Parallel()

	topo, err := Build(effective(false, nil))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := []string{"-javaagent:org.mockito:mockito-core", "-Xshare:off"}
	for _, s := range topo.Suites() {
		if !slices.Equal(s.JVMArgs, want) {
			t.Errorf("%s JVMArgs = %v, want %v", s.Name, s.JVMArgs, want)
		}
	}
	primary := topo.Primary.Dependencies
	if len(primary) != 2 || primary[0].Scope != coordinate.ScopeImplementation || primary[1].Scope != coordinate.ScopeRuntimeOnly {
		t.Errorf("unexpected primary dependencies %+v", primary)
	}
}

func TestBuild_IntegrationInheritance(t *testing.T) {
	t.Parallel()

	noSelf := false
	suites := map[string]convention.SuiteDecl{
		convention.DefaultIntegrationSuite: {
			Inherit:     []coordinate.Scope{coordinate.ScopeImplementation, coordinate.ScopeTestImplementation, coordinate.ScopeTestRuntimeOnly},
			IncludeSelf: &noSelf,
			Dependencies: []coordinate.Declaration{
				{Coordinate: "org.testcontainers:junit-jupiter", Scope: coordinate.ScopeImplementation},
			},
		},
	}
	topo, err := Build(effective(true, suites))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	var got []string
	for _, d := range topo.Integration.Dependencies {
		got = append(got, d.Notation())
	}
	want := []string{
		`implementation("io.lettuce:lettuce-core")`,
		`implementation("redis.clients:jedis")`,
		`runtimeOnly("org.junit.platform:junit-platform-launcher")`,
		`implementation("org.testcontainers:junit-jupiter")`,
	}
	if !slices.Equal(got, want) {
		t.Errorf("dependencies = %v, want %v", got, want)
	}
	if !slices.Equal(topo.Integration.Outputs, []string{"test"}) {
		t.Errorf("includeSelf=false should drop main output, got %v", topo.Integration.Outputs)
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		suites map[string]convention.SuiteDecl
	}{
		{name: "unknown suite", suites: map[string]convention.SuiteDecl{"e2eTest": {}}},
		{name: "bad inherit scope", suites: map[string]convention.SuiteDecl{"integrationTest": {Inherit: []coordinate.Scope{coordinate.ScopeAPI}}}},
		{name: "bad dependency scope", suites: map[string]convention.SuiteDecl{"integrationTest": {
			Dependencies: []coordinate.Declaration{{Coordinate: "g:a", Scope: coordinate.ScopeAPI}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Build(effective(false, tt.suites))
			if !errors.Is(err, convention.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestBuild_NoIntegrationSuite(t *testing.T) {
	t.Parallel()
	eff := effective(true, nil)
	eff.Testing.Integration = nil

	topo, err := Build(eff)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if topo.Integration != nil || len(topo.Suites()) != 1 {
		t.Errorf("expected only the primary suite, got %+v", topo.Suites())
	}
	if !slices.Equal(topo.VerificationSuites(), []string{"test"}) {
		t.Errorf("VerificationSuites() = %v", topo.VerificationSuites())
	}
}

func TestSourceSetTaskName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		verb, sourceSet, target, want string
	}{
		{"compile", "main", "Java", "compileJava"},
		{"compile", "test", "Java", "compileTestJava"},
		{"compile", "integrationTest", "Java", "compileIntegrationTestJava"},
		{"", "test", "Classes", "testClasses"},
		{"", "main", "Classes", "classes"},
	}
	for _, tt := range tests {
		if got := SourceSetTaskName(tt.verb, tt.sourceSet, tt.target); got != tt.want {
			t.Errorf("SourceSetTaskName(%q, %q, %q) = %q, want %q", tt.verb, tt.sourceSet, tt.target, got, tt.want)
		}
	}
	if got := CheckstyleTaskName("main"); got != "checkstyleMain" {
		t.Errorf("CheckstyleTaskName(main) = %q", got)
	}
	if got := CheckstyleTaskName("integrationTest"); got != "checkstyleIntegrationTest" {
		t.Errorf("CheckstyleTaskName(integrationTest) = %q", got)
	}
}
