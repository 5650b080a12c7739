// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ConfigInvalidId Id = iota + 1
	WorkspaceNotFoundId
	WorkspaceInvalidId
	UnknownLayerId
	LayerCycleId
	UnsetPropertyId
	UnsetVersionId
	UnknownProjectId
	UnknownModuleId
	TaskCycleId
	UnknownTaskId
	NoPublishRepositoryId
	ResolutionFailedId
	LockOutOfDateId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is an external reference shown under "See also".
	HttpLink string

	// Issue is a catalog entry explaining a failure class and how to fix it.
	Issue struct {
		id       Id
		name     string // stable slug accepted by `buildconv explain`
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

// Id returns the catalog id.
func (i *Issue) Id() Id { return i.id }

// Name returns the slug of the issue, e.g. "layer-cycle".
func (i *Issue) Name() string { return i.name }

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink { return slices.Clone(i.extLinks) }

// Title returns the first heading of the Markdown body.
func (i *Issue) Title() string {
	for line := range strings.Lines(string(i.mdMsg)) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return title
		}
	}
	return i.name
}

// Render renders the issue as terminal Markdown with the given glamour style
// ("dark", "light", "notty" or a JSON style path).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			fmt.Fprintf(&md, "- <%s>\n", link)
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configInvalidIssue = &Issue{
		id:   ConfigInvalidId,
		name: "config-invalid",
		mdMsg: `
# Tool configuration is invalid

buildconv reads its own settings from ` + "`config.cue`" + ` and ` + "`BUILDCONV_*`" + ` environment variables.

## Accepted fields
~~~cue
workspace_file:  "workspace.cue"
properties_file: "build.properties"
metrics_file:    "metrics.prom"          // optional
lock_file:       "constraints.lock.toml" // optional
output: format:  "table" | "json" | "yaml"
ui: { color_scheme: "auto" | "dark" | "light", verbose: bool }
log: level:      "debug" | "info" | "warn" | "error"
locate: { timeout: "10s", concurrency: 8 }
~~~

## Things you can try
- Print the effective configuration:
~~~
$ buildconv config show
~~~
- Recreate a default file with ` + "`buildconv config init`" + `.`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	workspaceNotFoundIssue = &Issue{
		id:   WorkspaceNotFoundId,
		name: "workspace-not-found",
		mdMsg: `
# No workspace definition found

buildconv evaluates a ` + "`workspace.cue`" + ` file that lists the modules of the build.

## Things you can try
- Create a starter workspace in the current directory:
~~~
$ buildconv init
~~~
- Point to another file with ` + "`--workspace path/to/workspace.cue`" + `.`,
	}

	workspaceInvalidIssue = &Issue{
		id:   WorkspaceInvalidId,
		name: "workspace-invalid",
		mdMsg: `
# Workspace definition does not match the schema

A workspace or module file failed CUE validation. The error lists the CUE path of every problem.

## Things you can try
- Check spelling of fields such as ` + "`convention`" + `, ` + "`settings`" + ` and ` + "`suites`" + `.
- Dependency notations must look like ` + "`group:artifact[:version]`" + ` or use ` + "`project: \"name\"`" + `.
- A file that reads ` + "`properties[...]`" + ` must declare ` + "`properties: [string]: string`" + `.`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	unknownLayerIssue = &Issue{
		id:   UnknownLayerId,
		name: "unknown-layer",
		mdMsg: `
# Unknown convention layer

A module's ` + "`convention`" + ` or a layer's ` + "`extends`" + ` names a layer that is not defined.

## Things you can try
- List the layers with ` + "`buildconv plan -o json`" + `.
- The built-in layers are ` + "`common`" + ` and ` + "`library`" + `. Workspace layers with the same name replace them.`,
	}

	layerCycleIssue = &Issue{
		id:   LayerCycleId,
		name: "layer-cycle",
		mdMsg: `
# Convention layers extend each other in a cycle

Every layer extends at most one parent, and following ` + "`extends`" + ` must end at a root layer.

## Things you can try
- Remove one ` + "`extends`" + ` in the reported cycle.`,
	}

	unsetPropertyIssue = &Issue{
		id:   UnsetPropertyId,
		name: "unset-property",
		mdMsg: `
# A required project property is not set

Some settings read their value from a project property, for example the checkstyle tool version from ` + "`javaformat-plugin.version`" + `.

## Things you can try
- Add the property to ` + "`build.properties`" + `.
- Pass it on the command line with ` + "`-P name=value`" + `.
- Export ` + "`BUILDCONV_PROP_<name>`" + ` (underscores stand for dots).`,
	}

	unsetVersionIssue = &Issue{
		id:   UnsetVersionId,
		name: "unset-version",
		mdMsg: `
# A module has no version

Constraint sets pin every sibling module to its version, so a module without a version cannot be listed.

## Things you can try
- Set ` + "`version`" + ` in ` + "`workspace.cue`" + ` or on the module.
- Pass ` + "`-P version=1.2.3`" + `.`,
		extLinks: []HttpLink{"https://docs.gradle.org/current/userguide/platforms.html"},
	}

	unknownProjectIssue = &Issue{
		id:   UnknownProjectId,
		name: "unknown-project",
		mdMsg: `
# Project dependency names no module

A ` + "`project: \"name\"`" + ` dependency must reference a module declared in the workspace or one of its included module files.`,
	}

	unknownModuleIssue = &Issue{
		id:   UnknownModuleId,
		name: "unknown-module",
		mdMsg: `
# No such module

## Things you can try
- List the modules of the workspace:
~~~
$ buildconv plan
~~~`,
	}

	taskCycleIssue = &Issue{
		id:   TaskCycleId,
		name: "task-cycle",
		mdMsg: `
# Tasks depend on each other in a cycle

Project dependencies between modules form a loop, so no module can be built first.

## Things you can try
- Move the shared code into a new module both sides depend on.`,
	}

	unknownTaskIssue = &Issue{
		id:   UnknownTaskId,
		name: "unknown-task",
		mdMsg: `
# No task matches the selector

Selectors are either a task name (` + "`check`" + `), matching every module, or a path (` + "`:core:check`" + `).

## Things you can try
- List every task:
~~~
$ buildconv tasks --all
~~~`,
		extLinks: []HttpLink{"https://docs.gradle.org/current/userguide/jvm_test_suite_plugin.html"},
	}

	noPublishRepositoryIssue = &Issue{
		id:   NoPublishRepositoryId,
		name: "no-publish-repository",
		mdMsg: `
# No publishing repository is configured

Publishing targets are derived from the ` + "`repo.url.prefix`" + ` property. Versions ending in the snapshot suffix go to ` + "`maven-snapshots`" + `, all others to ` + "`maven-releases`" + `.

## Things you can try
- Pass ` + "`-P repo.url.prefix=https://nexus.example.com/repository`" + `.`,
	}

	resolutionFailedIssue = &Issue{
		id:   ResolutionFailedId,
		name: "resolution-failed",
		mdMsg: `
# Declared dependencies were not found

` + "`buildconv verify`" + ` looked for every versioned coordinate in the resolution repositories and some were missing.

## Things you can try
- Check the coordinate for typos.
- Make sure the repository behind ` + "`repo.url.prefix`" + ` proxies the upstream that hosts it.
- Raise ` + "`locate.timeout`" + ` for slow repositories.`,
		extLinks: []HttpLink{"https://maven.apache.org/repository/layout.html"},
	}

	lockOutOfDateIssue = &Issue{
		id:   LockOutOfDateId,
		name: "lock-out-of-date",
		mdMsg: `
# Constraint lock file is out of date

The constraint sets computed from the workspace differ from the committed lock file.

## Things you can try
- Regenerate it:
~~~
$ buildconv bom --write
~~~`,
	}

	issues = map[Id]*Issue{
		configInvalidIssue.Id():       configInvalidIssue,
		workspaceNotFoundIssue.Id():   workspaceNotFoundIssue,
		workspaceInvalidIssue.Id():    workspaceInvalidIssue,
		unknownLayerIssue.Id():        unknownLayerIssue,
		layerCycleIssue.Id():          layerCycleIssue,
		unsetPropertyIssue.Id():       unsetPropertyIssue,
		unsetVersionIssue.Id():        unsetVersionIssue,
		unknownProjectIssue.Id():      unknownProjectIssue,
		unknownModuleIssue.Id():       unknownModuleIssue,
		taskCycleIssue.Id():           taskCycleIssue,
		unknownTaskIssue.Id():         unknownTaskIssue,
		noPublishRepositoryIssue.Id(): noPublishRepositoryIssue,
		resolutionFailedIssue.Id():    resolutionFailedIssue,
		lockOutOfDateIssue.Id():       lockOutOfDateIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id - b.id) })
	return out
}

// Get returns the issue with the given id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Lookup returns the issue with the given slug.
func Lookup(name string) (*Issue, bool) {
	for _, i := range issues {
		if i.name == name {
			return i, true
		}
	}
	return nil, false
}
