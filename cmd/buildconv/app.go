// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/config"
	"github.com/additionalbeans/buildconv/internal/engine"
	"github.com/additionalbeans/buildconv/internal/issue"
	"github.com/additionalbeans/buildconv/internal/metrics"
	"github.com/additionalbeans/buildconv/pkg/convention"
	"github.com/additionalbeans/buildconv/pkg/workspace"
)

var (
	// errWorkspaceNotFound is wrapped when the workspace file does not exist.
	errWorkspaceNotFound = errors.New("workspace file not found")
	// errConfigLoad is wrapped around every configuration loading failure.
	errConfigLoad = errors.New("configuration could not be loaded")
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command handler receives an App and reaches
	// configuration, output streams and the network through it.
	App struct {
		Config     config.Provider
		HTTPClient *http.Client
		environ    []string
		stdout     io.Writer
		stderr     io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		// HTTPClient is used by `verify`. Nil selects the locator default.
		HTTPClient *http.Client
		// Environ supplies BUILDCONV_PROP_* properties. Nil reads os.Environ.
		Environ []string
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// session is the per-invocation state shared by a command handler: the
	// loaded configuration, the logger and the project properties.
	session struct {
		app     *App
		cfg     *config.Config
		logger  *log.Logger
		metrics *metrics.Recorder
		props   convention.Properties
		// propSources is kept so watch mode can re-read the properties.
		propSources config.PropertySources
		// workspacePath is the workspace file evaluated by this invocation.
		workspacePath string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ()
	}
	return &App{
		Config:     deps.Config,
		HTTPClient: deps.HTTPClient,
		environ:    deps.Environ,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
}

// run opens a session, calls fn and turns a failure into a rendered
// diagnostic plus an ExitError. Cobra's own error printing is silenced so
// the diagnostic is shown once.
func (a *App) run(cmd *cobra.Command, flags *rootFlagValues, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := a.openSession(ctx, flags)
	if err == nil {
		err = fn(ctx, s)
		s.finish()
	}
	if err == nil {
		return nil
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	verbose := flags.verbose
	style := string(config.ColorSchemeAuto)
	if s != nil {
		verbose = s.cfg.UI.Verbose
		style = string(s.cfg.UI.ColorScheme)
		s.logger.Debug("command failed", "command", cmd.CommandPath(), "err", err)
	}
	svcErr := classify(err)
	renderServiceError(a.stderr, svcErr, verbose, style)
	return &ExitError{Code: exitCodeFor(svcErr), Err: svcErr}
}

// runWithoutSession runs fn with the same error rendering as run, for
// commands that must work while the configuration is missing or broken.
func (a *App) runWithoutSession(cmd *cobra.Command, flags *rootFlagValues, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	svcErr := classify(err)
	renderServiceError(a.stderr, svcErr, flags.verbose, string(config.ColorSchemeAuto))
	return &ExitError{Code: exitCodeFor(svcErr), Err: svcErr}
}

// openSession loads configuration and properties and applies the global
// flags on top of them.
func (a *App) openSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfigLoad, err)
	}
	if flags.verbose {
		cfg.UI.Verbose = true
	}
	if flags.output != "" {
		format := config.OutputFormat(flags.output)
		if valid, errs := format.IsValid(); !valid {
			return nil, fmt.Errorf("%w: %w", errConfigLoad, errors.Join(errs...))
		}
		cfg.Output.Format = format
	}

	s := &session{
		app:           a,
		cfg:           cfg,
		logger:        newLogger(a.stderr, cfg),
		workspacePath: cmp.Or(flags.workspace, cfg.WorkspaceFile, workspace.DefaultFileName),
	}
	if cfg.MetricsFile != "" {
		s.metrics = metrics.New()
	}

	propsFile := cmp.Or(flags.propertiesFile, cfg.PropertiesFile)
	if propsFile != "" && !filepath.IsAbs(propsFile) {
		propsFile = filepath.Join(filepath.Dir(s.workspacePath), propsFile)
	}
	s.propSources = config.PropertySources{
		File:      propsFile,
		Environ:   a.environ,
		Overrides: flags.properties,
	}
	s.props, err = config.LoadProperties(s.propSources)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("session opened", "workspace", s.workspacePath, "properties", len(s.props))
	return s, nil
}

// newLogger returns the invocation logger. Every line carries an invocation
// id so interleaved runs in CI logs can be told apart.
func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(string(cfg.Log.Level))
	if err != nil {
		level = log.WarnLevel
	}
	if cfg.UI.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
	return logger.With("invocation", uuid.New().String())
}

// loadWorkspace reads the workspace file with the session properties.
func (s *session) loadWorkspace() (*workspace.Workspace, error) {
	w, err := workspace.Load(s.workspacePath, workspace.LoadOptions{Properties: s.props})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, issue.NewErrorContext().
			WithOperation("load workspace").
			WithResource(s.workspacePath).
			WithIssue(issue.WorkspaceNotFoundId).
			WithSuggestion("Run 'buildconv init' to create a starter workspace").
			WithSuggestion("Pass --workspace to point at an existing file").
			Wrap(fmt.Errorf("%w: %w", errWorkspaceNotFound, err)).
			BuildError()
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("workspace loaded", "files", len(w.Files), "modules", len(w.Modules))
	return w, nil
}

// plan loads the workspace and evaluates it.
func (s *session) plan(ctx context.Context) (*engine.Plan, error) {
	w, err := s.loadWorkspace()
	if err != nil {
		return nil, err
	}
	eng := engine.New(engine.Options{
		Logger:  s.logger,
		Metrics: s.metrics,
	})
	return eng.Build(ctx, w, s.props)
}

// finish flushes the metrics textfile. A failure to write it is logged and
// never fails the command.
func (s *session) finish() {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
		s.logger.Warn("failed to write metrics", "path", s.cfg.MetricsFile, "err", err)
	}
}

func (s *session) stdout() io.Writer { return s.app.stdout }

// reloadWorkspace re-reads the properties and then the workspace. Watch mode
// calls it on every change.
func (s *session) reloadWorkspace(context.Context) (*workspace.Workspace, error) {
	props, err := config.LoadProperties(s.propSources)
	if err != nil {
		return nil, err
	}
	s.props = props
	return s.loadWorkspace()
}
