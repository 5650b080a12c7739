// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value ColorScheme
		want  bool
	}{
		{ColorSchemeAuto, true},
		{ColorSchemeDark, true},
		{ColorSchemeLight, true},
		{"", false},
		{"neon", false},
	}
	for _, tt := range tests {
		valid, errs := tt.value.IsValid()
		if valid != tt.want {
			t.Errorf("ColorScheme(%q).IsValid() = %v, want %v", tt.value, valid, tt.want)
		}
		if !valid && !errors.Is(errs[0], ErrInvalidColorScheme) {
			t.Errorf("error %v should wrap ErrInvalidColorScheme", errs[0])
		}
	}
}

func TestLogLevel_IsValidCaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, l := range []LogLevel{"debug", "INFO", "Warn", "error"} {
		if valid, _ := l.IsValid(); !valid {
			t.Errorf("LogLevel(%q) should be valid", l)
		}
	}
	if valid, errs := LogLevel("trace").IsValid(); valid || !errors.Is(errs[0], ErrInvalidLogLevel) {
		t.Errorf("trace should be invalid, got %v", errs)
	}
}

func TestConfig_IsValidCollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if valid, errs := cfg.IsValid(); !valid {
		t.Fatalf("default config invalid: %v", errs)
	}

	cfg.Output.Format = "xml"
	cfg.Locate.Concurrency = 0
	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("expected invalid config")
	}
	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("error should be *InvalidConfigError, got %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 2 {
		t.Errorf("FieldErrors = %v, want 2", cfgErr.FieldErrors)
	}
	if !errors.Is(cfgErr.FieldErrors[1], ErrInvalidLocateConfig) {
		t.Errorf("second field error should be a locate error: %v", cfgErr.FieldErrors[1])
	}
}
