// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/additionalbeans/buildconv/internal/engine"
	"github.com/additionalbeans/buildconv/pkg/bom"
	"github.com/additionalbeans/buildconv/pkg/workspace"
)

type (
	// LoadFunc loads the current workspace. It is called once per sync so
	// that edits to workspace and properties files are picked up.
	LoadFunc func(ctx context.Context) (*workspace.Workspace, error)

	// LockSync keeps a lock file in step with the constraint sets of a
	// workspace.
	LockSync struct {
		Path   string
		Load   LoadFunc
		Logger *log.Logger
	}

	// SyncResult describes one sync.
	SyncResult struct {
		Written bool
		// Changes is keyed by platform module; only non-empty changes appear.
		Changes map[string]bom.Changes
		Removed []string
	}
)

// Sync recomputes every constraint set and rewrites Path when the encoded
// lock differs from the file's bytes. An unreadable or malformed existing
// lock is treated as empty.
func (s *LockSync) Sync(ctx context.Context) (SyncResult, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	w, err := s.Load(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	sets, err := engine.ConstraintSets(w)
	if err != nil {
		return SyncResult{}, err
	}
	current := bom.NewLock(sets)
	format := bom.FormatForPath(s.Path)
	data, err := bom.MarshalLock(current, format)
	if err != nil {
		return SyncResult{}, err
	}

	existing, err := os.ReadFile(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SyncResult{}, fmt.Errorf("read lock file: %w", err)
	}
	if bytes.Equal(existing, data) {
		logger.Debug("lock file up to date", "path", s.Path)
		return SyncResult{}, nil
	}

	old := &bom.Lock{}
	if len(existing) > 0 {
		if parsed, perr := bom.UnmarshalLock(existing, format); perr == nil {
			old = parsed
		} else {
			logger.Warn("replacing unreadable lock file", "path", s.Path, "err", perr)
		}
	}
	changes, removed := bom.DiffLock(old, current)

	if err := writeAtomic(s.Path, data); err != nil {
		return SyncResult{}, err
	}
	for platform, c := range changes {
		logger.Info("constraints changed", "platform", platform, "changes", c.String())
	}
	for _, platform := range removed {
		logger.Info("platform removed", "platform", platform)
	}
	logger.Info("lock file written", "path", s.Path)
	return SyncResult{Written: true, Changes: changes, Removed: removed}, nil
}

// OnChange adapts Sync to a watcher callback. Sync failures are logged and
// swallowed so that a half-edited workspace does not stop the watcher.
func (s *LockSync) OnChange(ctx context.Context, _ []string) error {
	if _, err := s.Sync(ctx); err != nil {
		logger := s.Logger
		if logger == nil {
			return err
		}
		logger.Error("lock sync failed", "err", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("write lock file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("write lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	return nil
}
