// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Module: {
	name:        string
	version:     string
	platform:    bool | *false
	description?: string
}
`

type testModule struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Platform    bool   `json:"platform"`
	Description string `json:"description,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid module parses successfully", func(t *testing.T) {
		t.Parallel()
		data := []byte(`
name: "additional-beans-jdbc-spring-boot-starter"
version: "1.0.0"
description: "JDBC starter"
`)
		result, err := ParseAndDecode[testModule]([]byte(testSchema), data, "#Module")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Name != "additional-beans-jdbc-spring-boot-starter" {
			t.Errorf("unexpected name %q", result.Value.Name)
		}
		if result.Value.Platform {
			t.Error("platform should default to false")
		}
		if result.Unified.Err() != nil {
			t.Errorf("unified value has error: %v", result.Unified.Err())
		}
	})

	t.Run("invalid type returns validation error", func(t *testing.T) {
		t.Parallel()
		data := []byte(`
name: "starter"
version: 1
`)
		_, err := ParseAndDecode[testModule]([]byte(testSchema), data, "#Module", WithFilename("module.cue"))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if !strings.Contains(err.Error(), "module.cue") || !strings.Contains(err.Error(), "version") {
			t.Errorf("error should name file and field, got: %v", err)
		}
	})

	t.Run("missing required field returns error", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testModule]([]byte(testSchema), []byte(`name: "starter"`), "#Module")
		if err == nil {
			t.Error("expected error for missing required field")
		}
	})
}

func TestParseAndDecode_WithFill(t *testing.T) {
	t.Parallel()

	schema := `
#Module: {
	properties: [string]: string
	name:    string
	version: string
}
`
	// The user file declares the properties field so the reference compiles
	// on its own; the caller fills the values.
	data := []byte(`
properties: [string]: string
name: "starter"
version: properties["version"]
`)

	t.Run("filled value resolves references", func(t *testing.T) {
		t.Parallel()
		result, err := ParseAndDecode[testModule]([]byte(schema), data, "#Module",
			WithFill("properties", map[string]string{"version": "2.3.0-SNAPSHOT"}))
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Version != "2.3.0-SNAPSHOT" {
			t.Errorf("expected filled version, got %q", result.Value.Version)
		}
	})

	t.Run("missing fill leaves reference incomplete", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testModule]([]byte(schema), data, "#Module",
			WithFill("properties", map[string]string{}))
		if err == nil {
			t.Fatal("expected error for unresolved property reference")
		}
	})
}

func TestFileSizeLimit(t *testing.T) {
	t.Parallel()

	t.Run("file within limit parses successfully", func(t *testing.T) {
		t.Parallel()
		data := []byte(`name: "a", version: "1"`)
		if _, err := ParseAndDecode[testModule]([]byte(testSchema), data, "#Module", WithMaxFileSize(1024)); err != nil {
			t.Errorf("expected success, got error: %v", err)
		}
	})

	t.Run("file exceeding limit returns error", func(t *testing.T) {
		t.Parallel()
		data := []byte(strings.Repeat("a", 200))
		_, err := ParseAndDecode[testModule]([]byte(testSchema), data, "#Module", WithMaxFileSize(100))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("error should mention size limit, got: %v", err)
		}
	})
}

func TestParseAndDecodeString(t *testing.T) {
	t.Parallel()
	result, err := ParseAndDecodeString[testModule](testSchema, []byte(`name: "a", version: "1"`), "#Module")
	if err != nil {
		t.Fatalf("ParseAndDecodeString failed: %v", err)
	}
	if result.Value.Name != "a" {
		t.Errorf("expected name='a', got %q", result.Value.Name)
	}
}
