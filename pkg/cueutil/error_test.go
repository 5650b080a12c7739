// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()
		if err := FormatError(nil, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()
		original := errors.New("some error")
		err := FormatError(original, "test.cue")
		if !errors.Is(err, original) {
			t.Errorf("error should wrap the original, got: %v", err)
		}
		if !strings.HasPrefix(err.Error(), "test.cue: ") {
			t.Errorf("error should start with filepath, got: %v", err)
		}
		if _, ok := errors.AsType[*ValidationError](err); ok {
			t.Error("a plain error should not become a ValidationError")
		}
	})

	t.Run("wrapped sentinel survives", func(t *testing.T) {
		t.Parallel()
		err := FormatError(fmt.Errorf("read workspace: %w", fs.ErrNotExist), "workspace.cue")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("errors.Is(fs.ErrNotExist) should hold, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{name: "empty path", path: []string{}, expected: ""},
		{name: "single element", path: []string{"group"}, expected: "group"},
		{name: "nested path", path: []string{"modules", "jdbc", "version"}, expected: "modules.jdbc.version"},
		{name: "array index", path: []string{"include", "0"}, expected: "include[0]"},
		{name: "index in the middle", path: []string{"dependencies", "2", "scope"}, expected: "dependencies[2].scope"},
		{name: "leading numeric element", path: []string{"0", "name"}, expected: "0.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "within limit", size: 10},
		{name: "exact limit", size: 100},
		{name: "empty", size: 0},
		{name: "over limit", size: 101, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckFileSize(make([]byte, tt.size), 100, "test.cue")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckFileSize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && (!strings.Contains(err.Error(), "101") || !strings.Contains(err.Error(), "test.cue")) {
				t.Errorf("error should name file and size, got: %v", err)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	single := &ValidationError{
		FilePath: "workspace.cue",
		Problems: []Problem{{CUEPath: "modules.jdbc.version", Message: "expected string, got int"}},
	}
	if got, want := single.Error(), "workspace.cue: modules.jdbc.version: expected string, got int"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !errors.Is(single, ErrValidation) {
		t.Error("ValidationError should wrap ErrValidation")
	}

	multi := &ValidationError{
		FilePath: "workspace.cue",
		Problems: []Problem{
			{Message: "syntax error"},
			{CUEPath: "group", Message: "incomplete value string"},
		},
	}
	if !strings.Contains(multi.Error(), "validation failed:\n  syntax error\n  group: incomplete value string") {
		t.Errorf("unexpected multi-problem message: %q", multi.Error())
	}
}
