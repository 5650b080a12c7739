// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/config"
	"github.com/additionalbeans/buildconv/internal/issue"
)

// newConfigCommand creates the `buildconv config` command tree.
// Subcommands that read configuration use the App's config provider.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage buildconv configuration",
		Long: `Manage buildconv configuration.

Configuration is stored in:
  - Linux: ~/.config/buildconv/config.cue
  - macOS: ~/Library/Application Support/buildconv/config.cue
  - Windows: %APPDATA%\buildconv\config.cue

Every key can be overridden with a BUILDCONV_<KEY> environment variable,
for example BUILDCONV_LOCATE_TIMEOUT=30s.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, flags, func(_ context.Context, s *session) error {
				return showConfig(s, flags)
			})
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWithoutSession(cmd, flags, func() error {
				return initConfig(app.stdout, flags)
			})
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWithoutSession(cmd, flags, func() error {
				path, _, err := config.ConfigPath(config.LoadOptions{ConfigFilePath: flags.configPath})
				if err != nil {
					return err
				}
				fmt.Fprintln(app.stdout, path)
				return nil
			})
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, flags, func(_ context.Context, s *session) error {
				_, err := io.WriteString(s.stdout(), config.GenerateCUE(s.cfg))
				return err
			})
		},
	})

	return cfgCmd
}

func showConfig(s *session, flags *rootFlagValues) error {
	if ok, err := writeStructured(s.stdout(), s.cfg.Output.Format, s.cfg); ok {
		return err
	}

	source := SubtitleStyle.Render("(using defaults)")
	path, exists, err := config.ConfigPath(config.LoadOptions{ConfigFilePath: flags.configPath})
	if err == nil && exists {
		source = path
	}

	cfg := s.cfg
	keyValueTable(s.stdout(), "Current Configuration", [][2]string{
		{"config file", source},
		{"workspace_file", cfg.WorkspaceFile},
		{"properties_file", cfg.PropertiesFile},
		{"lock_file", orEmpty(cfg.LockFile)},
		{"metrics_file", orEmpty(cfg.MetricsFile)},
		{"output.format", cfg.Output.Format.String()},
		{"ui.color_scheme", cfg.UI.ColorScheme.String()},
		{"ui.verbose", yesNo(cfg.UI.Verbose)},
		{"log.level", cfg.Log.Level.String()},
		{"locate.timeout", cfg.Locate.Timeout.String()},
		{"locate.concurrency", fmt.Sprint(cfg.Locate.Concurrency)},
	})
	return nil
}

func initConfig(w io.Writer, flags *rootFlagValues) error {
	var (
		path    string
		written bool
		err     error
	)
	if flags.configPath != "" {
		path, written, err = writeConfigFile(flags.configPath)
	} else {
		var dir string
		if dir, err = config.ConfigDir(); err != nil {
			return err
		}
		path, written, err = config.CreateDefaultConfig(dir)
	}
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !written {
		fmt.Fprintf(w, "%s %s already exists\n", warningIcon, path)
		return nil
	}
	fmt.Fprintf(w, "%s Created default configuration at %s\n", successIcon, path)
	return nil
}

// writeConfigFile writes the default configuration to an explicit --config
// path unless a file is already there.
func writeConfigFile(path string) (string, bool, error) {
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, issue.WrapWithContext(err, "write configuration", path)
	}
	if err := os.WriteFile(path, []byte(config.GenerateCUE(config.DefaultConfig())), 0o644); err != nil {
		return "", false, issue.WrapWithContext(err, "write configuration", path)
	}
	return path, true, nil
}

func orEmpty(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}
