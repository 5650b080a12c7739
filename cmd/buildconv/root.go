// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every command.
type rootFlagValues struct {
	verbose        bool
	configPath     string
	workspace      string
	propertiesFile string
	properties     []string
	output         string
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "buildconv",
		Short: "Convention-based build policy for multi-module projects",
		Long: TitleStyle.Render("buildconv") + SubtitleStyle.Render(" - convention-based build policy for multi-module projects") + `

buildconv evaluates a CUE workspace of modules against layered build
conventions and reports what each module gets: compiler settings,
checks, test suites, platform constraint sets, manifest attributes and
the repository it publishes to.

` + SubtitleStyle.Render("Examples:") + `
  buildconv plan                    Summarize every module
  buildconv resolve core            Show the effective configuration of 'core'
  buildconv bom --check             Fail when the lock file is stale
  buildconv tasks check -P integration
                                    Order the check tasks with integration tests on
  buildconv explain unset-property  Explain an error class`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is the platform config dir)")
	pf.StringVarP(&flags.workspace, "workspace", "w", "", "workspace file (default from config, then workspace.cue)")
	pf.StringVar(&flags.propertiesFile, "properties-file", "", "project properties file, relative to the workspace")
	pf.StringArrayVarP(&flags.properties, "property", "P", nil, "set a project property (name=value, or bare name)")
	pf.StringVarP(&flags.output, "output", "o", "", "output format: table, json or yaml")

	rootCmd.AddCommand(
		newPlanCommand(app, flags),
		newResolveCommand(app, flags),
		newBOMCommand(app, flags),
		newTasksCommand(app, flags),
		newPublishTargetCommand(app, flags),
		newManifestCommand(app, flags),
		newVerifyCommand(app, flags),
		newWatchCommand(app, flags),
		newExplainCommand(app, flags),
		newInitCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return rootCmd
}

// Execute runs the CLI and exits with the status of the failed command.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		if exitErr, ok := errors.AsType[*ExitError](err); ok {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitUsage))
	}
}
