// SPDX-License-Identifier: MPL-2.0

package taskgraph

import (
	"strings"

	"github.com/additionalbeans/buildconv/pkg/coordinate"
	"github.com/additionalbeans/buildconv/pkg/suite"
)

const (
	groupBuild        = "build"
	groupVerification = "verification"
	groupPublishing   = "publishing"
)

// moduleTasks registers the tasks of one module.
type moduleTasks struct {
	g *Graph
	m Module
}

func newModuleTasks(g *Graph, m Module) *moduleTasks {
	return &moduleTasks{g: g, m: m}
}

func (b *moduleTasks) path(name string) string { return Path(b.m.Effective.Module, name) }

func (b *moduleTasks) task(name, group, description string, dependsOn ...string) *Task {
	t := &Task{
		Path:        b.path(name),
		Module:      b.m.Effective.Module,
		Name:        name,
		Group:       group,
		Description: description,
		DependsOn:   dependsOn,
	}
	b.g.tasks[t.Path] = t
	b.g.order = append(b.g.order, t.Path)
	b.g.deps.AddNode(t.Path)
	return t
}

func (b *moduleTasks) add() {
	eff := b.m.Effective
	topo := b.m.Topology

	// Main classes need the jars of main-scoped project dependencies.
	var upstream []string
	for _, d := range eff.Dependencies {
		if d.IsProject() && d.Scope.Main() {
			upstream = append(upstream, Path(d.Project, TaskJar))
		}
	}
	b.task(TaskCompileJava, "", "Compiles main Java source.", upstream...)
	b.task(TaskClasses, groupBuild, "Assembles main classes.", b.path(TaskCompileJava))
	b.task(TaskJar, groupBuild, "Assembles a jar archive containing the classes of the 'main' feature.", b.path(TaskClasses))

	assemble := []string{b.path(TaskJar)}
	if eff.Java.SourcesJar {
		b.task(TaskSourcesJar, "documentation", "Assembles a jar archive containing the main sources.")
		assemble = append(assemble, b.path(TaskSourcesJar))
	}
	b.task(TaskAssemble, groupBuild, "Assembles the outputs of this project.", assemble...)

	for _, s := range topo.Suites() {
		b.addSuite(s)
	}

	var check []string
	for _, name := range topo.VerificationSuites() {
		check = append(check, b.path(name))
	}

	if eff.Checkstyle != nil {
		var all []string
		for _, ss := range topo.SourceSets() {
			name := suite.CheckstyleTaskName(ss)
			b.task(name, "other", "Run Checkstyle analysis for "+ss+" classes",
				b.path(suite.SourceSetTaskName("", ss, "Classes")))
			all = append(all, b.path(name))
		}
		b.task(TaskCheckstyle, "other", "Run Checkstyle analysis for all classes", all...)
		check = append(check, all...)
	}

	if eff.Architecture != nil {
		b.task(TaskArchUnit, groupVerification, "Checks architecture rules against main and test classes.",
			b.path(TaskClasses), b.path(suite.SourceSetTaskName("", topo.Primary.Name, "Classes")))
		check = append(check, b.path(TaskArchUnit))
	}

	b.task(TaskCheck, groupVerification, "Runs all checks.", check...)
	b.task(TaskBuild, groupBuild, "Assembles and tests this project.", b.path(TaskAssemble), b.path(TaskCheck))

	if eff.Publishing != nil {
		pub := eff.Publishing.Publication
		pom := "generatePomFileFor" + capitalize(pub) + "Publication"
		b.task(pom, "", "Generates the Maven POM file for publication '"+pub+"'.")
		upload := "publish" + capitalize(pub) + "PublicationToMavenRepository"
		b.task(upload, groupPublishing, "Publishes Maven publication '"+pub+"' to Maven repository.",
			append([]string{b.path(pom)}, assemble...)...)
		b.task(TaskPublish, groupPublishing, "Publishes all publications produced by this project.", b.path(upload))
	}
}

func (b *moduleTasks) addSuite(s suite.Suite) {
	compile := suite.SourceSetTaskName("compile", s.Name, "Java")
	classes := suite.SourceSetTaskName("", s.Name, "Classes")

	var compileDeps []string
	for _, out := range s.Outputs {
		compileDeps = append(compileDeps, b.path(suite.SourceSetTaskName("", out, "Classes")))
	}
	for _, d := range s.Dependencies {
		if d.IsProject() && d.Scope != coordinate.ScopeCheckstyle {
			compileDeps = append(compileDeps, Path(d.Project, TaskJar))
		}
	}
	b.task(compile, "", "Compiles "+s.Name+" Java source.", compileDeps...)
	b.task(classes, groupBuild, "Assembles "+s.Name+" classes.", b.path(compile))

	t := b.task(s.Name, groupVerification, "Runs the "+string(s.Kind)+" test suite.", b.path(classes))
	for _, after := range s.ShouldRunAfter {
		t.ShouldRunAfter = append(t.ShouldRunAfter, b.path(after))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
