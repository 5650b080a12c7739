// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/config"
	"github.com/additionalbeans/buildconv/internal/issue"
	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/workspace"
)

// starterJavaformatVersion seeds the properties file written by init.
const starterJavaformatVersion = "0.0.43"

var errFileExists = errors.New("file already exists")

type initFlagValues struct {
	force bool
	group string
	name  string
}

func newInitCommand(app *App, flags *rootFlagValues) *cobra.Command {
	f := &initFlagValues{}
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter workspace",
		Long: `Create a workspace.cue with a platform module and a library module, and a
build.properties holding the properties the built-in conventions read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, flags, func(_ context.Context, s *session) error {
				dir := "."
				if len(args) == 1 {
					dir = args[0]
				}
				return runInit(s, dir, f)
			})
		},
	}
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite existing files")
	cmd.Flags().StringVar(&f.group, "group", "com.example", "group of the generated modules")
	cmd.Flags().StringVar(&f.name, "name", "", "base name of the generated modules (default: directory name)")
	return cmd
}

func runInit(s *session, dir string, f *initFlagValues) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	name := f.name
	if name == "" {
		name = strings.ToLower(filepath.Base(absDir))
	}

	files := []struct {
		name    string
		content string
	}{
		{workspace.DefaultFileName, starterWorkspace(f.group, name)},
		{config.DefaultPropertiesFile, starterProperties()},
	}
	for _, file := range files {
		path := filepath.Join(absDir, file.name)
		if _, err := os.Stat(path); err == nil && !f.force {
			return fmt.Errorf("%w: %s (use --force to overwrite)", errFileExists, path)
		}
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return issue.WrapWithContext(err, "create workspace directory", absDir)
	}
	for _, file := range files {
		path := filepath.Join(absDir, file.name)
		if err := os.WriteFile(path, []byte(file.content), 0o644); err != nil {
			return issue.WrapWithContext(err, "write starter file", path)
		}
		fmt.Fprintf(s.stdout(), "%s Created %s\n", successIcon, path)
	}

	fmt.Fprintln(s.stdout())
	fmt.Fprintln(s.stdout(), SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(s.stdout(), "  1. Add your modules to workspace.cue")
	fmt.Fprintln(s.stdout(), "  2. Run 'buildconv plan' to see what each module gets")
	fmt.Fprintln(s.stdout(), "  3. Run 'buildconv bom --write' to create the lock file")
	return nil
}

func starterWorkspace(group, name string) string {
	var sb strings.Builder
	sb.WriteString("// Workspace definition. Modules apply the \"library\" convention unless\n")
	sb.WriteString("// they name another layer.\n\n")
	fmt.Fprintf(&sb, "group:   %q\n", group)
	sb.WriteString("version: \"0.1.0-SNAPSHOT\"\n\n")
	sb.WriteString("modules: {\n")
	fmt.Fprintf(&sb, "\t%q: {}\n", name+"-bom")
	fmt.Fprintf(&sb, "\t%q: {\n", name+"-core")
	sb.WriteString("\t\tdependencies: [\n")
	sb.WriteString("\t\t\t{coordinate: \"org.springframework.boot:spring-boot-starter\", scope: \"implementation\"},\n")
	sb.WriteString("\t\t]\n")
	sb.WriteString("\t}\n")
	sb.WriteString("}\n")
	return sb.String()
}

func starterProperties() string {
	return "# Project properties. -P name=value and BUILDCONV_PROP_<name> override them.\n" +
		convention.PropertyJavaformatVersion + "=" + starterJavaformatVersion + "\n"
}
