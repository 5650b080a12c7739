// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/watch"
)

// workspacePattern selects every CUE definition file under the workspace.
const workspacePattern = "**/*.cue"

func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the lock file in step with the workspace",
		Long: `Watch the workspace definition files and the properties file. After every
change the constraint sets are recomputed and the lock file is rewritten when
its content differs. Evaluation errors are logged and watching continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, flags, func(ctx context.Context, s *session) error {
				return runWatch(ctx, s, debounce)
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before recomputing")
	return cmd
}

func runWatch(ctx context.Context, s *session, debounce time.Duration) error {
	w, err := s.loadWorkspace()
	if err != nil {
		return err
	}
	lockPath := s.lockPath(w)
	ls := &watch.LockSync{Path: lockPath, Load: s.reloadWorkspace, Logger: s.logger}

	res, err := ls.Sync(ctx)
	if err != nil {
		return err
	}
	if res.Written {
		fmt.Fprintf(s.stdout(), "%s wrote %s\n", successIcon, lockPath)
		renderLockChanges(s.stdout(), res.Changes, res.Removed)
	}

	patterns := []string{workspacePattern}
	if rel, ok := relativeTo(w.Root, s.propSources.File); ok {
		patterns = append(patterns, rel)
	}
	watcher, err := watch.New(watch.Config{
		BaseDir:  w.Root,
		Patterns: patterns,
		Debounce: debounce,
		OnChange: ls.OnChange,
		Logger:   s.logger,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.stdout(), "%s watching %s (press Ctrl+C to stop)\n", TitleStyle.Render("buildconv"), watcher.BaseDir())
	return watcher.Run(ctx)
}

// relativeTo returns path relative to base as a slash path, when path lies
// under base.
func relativeTo(base, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
