// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/additionalbeans/buildconv/internal/engine"
	"github.com/additionalbeans/buildconv/internal/watch"
	"github.com/additionalbeans/buildconv/pkg/bom"
	"github.com/additionalbeans/buildconv/pkg/workspace"
)

// defaultLockFile is written next to the workspace when lock_file is unset.
const defaultLockFile = "buildconv.lock.toml"

type bomFlagValues struct {
	format string
	write  bool
	check  bool
}

func newBOMCommand(app *App, flags *rootFlagValues) *cobra.Command {
	bf := &bomFlagValues{}
	cmd := &cobra.Command{
		Use:   "bom [platform-module]",
		Short: "Generate platform constraint sets",
		Long: `Generate the constraint set of every platform module, or of the named one.
A constraint set pins every non-BOM module of the workspace to its version.

With --write the sets are stored in the lock file, which is rewritten only
when its content changes. With --check the command fails when the lock file
does not match the workspace.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, flags, func(ctx context.Context, s *session) error {
				return runBOM(ctx, s, bf, args)
			})
		},
	}
	cmd.Flags().StringVarP(&bf.format, "format", "f", "", "encode sets as "+formatList())
	cmd.Flags().BoolVar(&bf.write, "write", false, "update the lock file")
	cmd.Flags().BoolVar(&bf.check, "check", false, "fail when the lock file is out of date")
	cmd.MarkFlagsMutuallyExclusive("write", "check")
	return cmd
}

func formatList() string {
	names := make([]string, 0, len(bom.Formats()))
	for _, f := range bom.Formats() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

func runBOM(ctx context.Context, s *session, bf *bomFlagValues, args []string) error {
	if bf.format != "" {
		if valid, errs := bom.Format(bf.format).IsValid(); !valid {
			return errors.Join(errs...)
		}
	}

	w, err := s.loadWorkspace()
	if err != nil {
		return err
	}
	lockPath := s.lockPath(w)

	switch {
	case bf.write:
		return writeLock(ctx, s, w, lockPath)
	case bf.check:
		return checkLock(s, w, lockPath)
	}

	sets, err := engine.ConstraintSets(w)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		sets, err = selectPlatform(w, sets, args[0])
		if err != nil {
			return err
		}
	}
	for _, set := range sets {
		s.metrics.ConstraintsEmitted(set.Platform, len(set.Constraints))
	}

	if bf.format != "" {
		for _, set := range sets {
			if err := bom.Encode(s.stdout(), set, bom.Format(bf.format)); err != nil {
				return err
			}
		}
		return nil
	}
	if ok, err := writeStructured(s.stdout(), s.cfg.Output.Format, sets); ok {
		return err
	}
	renderConstraintSets(s.stdout(), sets)
	return nil
}

func selectPlatform(w *workspace.Workspace, sets []*bom.Set, name string) ([]*bom.Set, error) {
	if _, ok := w.Module(name); !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrUnknownModule, name)
	}
	i := slices.IndexFunc(sets, func(set *bom.Set) bool { return set.Platform == name })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s is not a platform module", engine.ErrUnknownModule, name)
	}
	return sets[i : i+1], nil
}

// lockPath resolves the lock file relative to the workspace directory.
func (s *session) lockPath(w *workspace.Workspace) string {
	path := s.cfg.LockFile
	if path == "" {
		path = defaultLockFile
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.Root, path)
}

func writeLock(ctx context.Context, s *session, w *workspace.Workspace, path string) error {
	ls := &watch.LockSync{
		Path:   path,
		Load:   func(context.Context) (*workspace.Workspace, error) { return w, nil },
		Logger: s.logger,
	}
	res, err := ls.Sync(ctx)
	if err != nil {
		return err
	}
	out := s.stdout()
	if !res.Written {
		fmt.Fprintf(out, "%s %s is up to date\n", successIcon, path)
		return nil
	}
	fmt.Fprintf(out, "%s wrote %s\n", successIcon, path)
	renderLockChanges(out, res.Changes, res.Removed)
	return nil
}

func checkLock(s *session, w *workspace.Workspace, path string) error {
	sets, err := engine.ConstraintSets(w)
	if err != nil {
		return err
	}
	current := bom.NewLock(sets)

	format := bom.FormatForPath(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", errLockOutOfDate, path)
	}
	if err != nil {
		return err
	}
	want, err := bom.MarshalLock(current, format)
	if err != nil {
		return err
	}
	if string(want) == string(data) {
		fmt.Fprintf(s.stdout(), "%s %s is up to date\n", successIcon, path)
		return nil
	}

	old, err := bom.UnmarshalLock(data, format)
	if err != nil {
		return fmt.Errorf("%w: %w", errLockOutOfDate, err)
	}
	changes, removed := bom.DiffLock(old, current)
	renderLockChanges(s.stdout(), changes, removed)
	return fmt.Errorf("%w: %s", errLockOutOfDate, path)
}

func renderConstraintSets(w io.Writer, sets []*bom.Set) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Platform", "Group", "Module", "Version"})
	for _, set := range sets {
		if len(set.Constraints) == 0 {
			t.AppendRow(table.Row{set.Platform, emptyCell, emptyCell, emptyCell})
		}
		for _, c := range set.Constraints {
			t.AppendRow(table.Row{set.Platform, c.Group, c.Name, c.Version})
		}
		t.AppendSeparator()
	}
	t.Render()
}

func renderLockChanges(w io.Writer, changes map[string]bom.Changes, removed []string) {
	platforms := make([]string, 0, len(changes))
	for p := range changes {
		platforms = append(platforms, p)
	}
	slices.Sort(platforms)
	for _, p := range platforms {
		fmt.Fprintf(w, "  %s %s\n", NameStyle.Render(p), changes[p])
	}
	for _, p := range removed {
		fmt.Fprintf(w, "  %s %s\n", NameStyle.Render(p), WarningStyle.Render("removed"))
	}
}
