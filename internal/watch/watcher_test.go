// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

func startWatcher(t *testing.T, cfg Config) (cancel func()) {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancelCtx := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	return func() {
		cancelCtx()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after cancellation")
		}
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	stop := startWatcher(t, Config{
		BaseDir:  dir,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})

	for _, name := range []string{"a.cue", "b.cue", "c.cue"} {
		writeFile(t, filepath.Join(dir, name), "x: 1")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	for _, want := range []string{"a.cue", "b.cue", "c.cue"} {
		if !slices.Contains(collected, want) {
			t.Errorf("changed = %v, missing %s", collected, want)
		}
	}
}

func TestWatcher_PatternsAndIgnores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	stop := startWatcher(t, Config{
		BaseDir:  dir,
		Patterns: []string{"**/*.cue", "build.properties"},
		Ignore:   []string{"tmp/**"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	defer stop()

	writeFile(t, filepath.Join(dir, "notes.txt"), "no")
	writeFile(t, filepath.Join(dir, "tmp", "scratch.cue"), "no")
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "build.properties"), "integration=")

	select {
	case changed := <-fired:
		if !slices.Equal(changed, []string{"build.properties"}) {
			t.Errorf("changed = %v, want [build.properties]", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	stop := startWatcher(t, Config{
		BaseDir:  dir,
		Patterns: []string{"**/*.cue"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	defer stop()

	if err := os.Mkdir(filepath.Join(dir, "modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "modules", "core.cue"), "name: \"core\"")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-fired:
			if slices.Contains(changed, "modules/core.cue") {
				return
			}
		case <-deadline:
			t.Fatal("file in a new directory never reported")
		}
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		wantErrs int
	}{
		{name: "zero value", cfg: Config{}},
		{name: "valid patterns", cfg: Config{Patterns: []string{"**/*.cue"}, Ignore: []string{"build/**"}}},
		{name: "bad watch pattern", cfg: Config{Patterns: []string{"[oops"}}, wantErrs: 1},
		{name: "empty ignore pattern", cfg: Config{Ignore: []string{""}}, wantErrs: 1},
		{name: "both bad", cfg: Config{Patterns: []string{"{a"}, Ignore: []string{"[b"}}, wantErrs: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, errs := tt.cfg.IsValid()
			if ok != (tt.wantErrs == 0) || len(errs) != tt.wantErrs {
				t.Fatalf("IsValid() = %v, %v", ok, errs)
			}
			for _, err := range errs {
				if !errors.Is(err, ErrInvalidPattern) {
					t.Errorf("error %v should wrap ErrInvalidPattern", err)
				}
			}
		})
	}

	if _, err := New(Config{BaseDir: t.TempDir(), Patterns: []string{"[oops"}}); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("New() error = %v, want ErrInvalidPattern", err)
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{"core/build/libs/core.jar", true},
		{".gradle/8.10/fileHashes", true},
		{"workspace.cue.swp", true},
		{"workspace.cue~", true},
		{"sub/.DS_Store", true},
		{"workspace.cue", false},
		{"modules/core.cue", false},
		{"build.properties", false},
		{".gitignore", false},
	}
	w := &Watcher{ignores: DefaultIgnores()}
	for _, tt := range tests {
		if got := w.isIgnored(tt.path); got != tt.ignored {
			t.Errorf("isIgnored(%q) = %v, want %v", tt.path, got, tt.ignored)
		}
	}
}
