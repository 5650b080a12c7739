// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs work when workspace files change.
//
// A Watcher registers every non-ignored directory under its base directory
// with fsnotify, filters events through doublestar patterns and coalesces
// bursts of events into one callback per debounce window.
package watch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before the
// callback fires.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrInvalidPattern is returned when a watch or ignore glob cannot be parsed.
	ErrInvalidPattern = errors.New("invalid glob pattern")
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("watcher already running")

	// defaultIgnores are never watched: VCS metadata, build outputs and
	// editor scratch files.
	defaultIgnores = []string{
		"**/.git/**",
		"**/.gradle/**",
		"**/build/**",
		"**/out/**",
		"**/.idea/**",
		"**/*.swp",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// InvalidPatternError names the pattern that failed to parse.
	InvalidPatternError struct {
		Kind    string
		Pattern string
		Err     error
	}

	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the watched root; empty means the working directory.
		BaseDir string
		// Patterns select the files that trigger the callback, relative to
		// BaseDir. Empty matches every non-ignored file.
		Patterns []string
		// Ignore is merged with the built-in ignores.
		Ignore []string
		// Debounce falls back to DefaultDebounce when not positive.
		Debounce time.Duration
		// OnChange receives the sorted, deduplicated relative paths changed in
		// one debounce window. Errors are logged; they do not stop the watcher.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *log.Logger
	}

	// Watcher monitors BaseDir. Run may be called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		debounce time.Duration
		baseDir  string
		logger   *log.Logger
		started  atomic.Bool
	}
)

// Error implements the error interface for InvalidPatternError.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q: %v", e.Kind, e.Pattern, e.Err)
}

// Unwrap returns ErrInvalidPattern for errors.Is() compatibility.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }

// IsValid reports whether every pattern of c parses.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, group := range []struct {
		kind     string
		patterns []string
	}{{"watch", c.Patterns}, {"ignore", c.Ignore}} {
		for _, p := range group.patterns {
			if p == "" {
				errs = append(errs, &InvalidPatternError{Kind: group.kind, Pattern: p, Err: errors.New("empty pattern")})
				continue
			}
			if !doublestar.ValidatePattern(p) {
				errs = append(errs, &InvalidPatternError{Kind: group.kind, Pattern: p, Err: doublestar.ErrBadPattern})
			}
		}
	}
	return len(errs) == 0, errs
}

// New validates cfg and registers the directory tree under BaseDir.
func New(cfg Config) (*Watcher, error) {
	if ok, errs := cfg.IsValid(); !ok {
		return nil, errors.Join(errs...)
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: cmp.Or(max(cfg.Debounce, 0), DefaultDebounce),
		baseDir:  absBase,
		logger:   logger,
	}
	if err := w.addDirectories(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close watcher after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// BaseDir returns the absolute watched root.
func (w *Watcher) BaseDir() string { return w.baseDir }

// Run processes events until ctx ends. It returns nil on cancellation and an
// error when the underlying watcher breaks. A callback that is still running
// when the next window closes is not re-entered; its events are retried after
// another debounce period.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, deferring")
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Debug("change detected", "files", changed)
		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("watch callback failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("fsnotify event channel closed")
			}
			rel, err := filepath.Rel(w.baseDir, evt.Name)
			if err != nil {
				rel = evt.Name
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if w.isIgnored(rel) || !w.matches(rel) {
				continue
			}

			mu.Lock()
			pending[filepath.ToSlash(rel)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("fsnotify error channel closed")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("fsnotify: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) addDirectories() error {
	err := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "err", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.baseDir, path)
		if err != nil {
			return nil //nolint:nilerr // not under the base directory
		}
		if w.isIgnoredDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", w.baseDir, err)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after New.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil || w.isIgnoredDir(rel) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "err", err)
	}
}

func (w *Watcher) isIgnoredDir(rel string) bool {
	return w.isIgnored(rel) || w.isIgnored(rel+"/")
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	name := filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string { return slices.Clone(defaultIgnores) }
