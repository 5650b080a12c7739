// SPDX-License-Identifier: MPL-2.0

package bom

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatTOML renders the set as a TOML lock document.
	FormatTOML Format = "toml"
	// FormatYAML renders the set as YAML.
	FormatYAML Format = "yaml"
	// FormatJSON renders the set as indented JSON.
	FormatJSON Format = "json"
	// FormatCUE renders the set as a CUE struct.
	FormatCUE Format = "cue"
	// FormatGradle renders a Kotlin DSL constraints block.
	FormatGradle Format = "gradle"
)

// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid constraint set format")

type (
	// Format selects a constraint set encoding.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

var allFormats = []Format{FormatTOML, FormatYAML, FormatJSON, FormatCUE, FormatGradle}

// Formats returns every supported format.
func Formats() []Format { return slices.Clone(allFormats) }

// String returns the string representation of the Format.
func (f Format) String() string { return string(f) }

// IsValid returns whether the Format is supported, and a list of validation
// errors if it is not.
func (f Format) IsValid() (bool, []error) {
	if slices.Contains(allFormats, f) {
		return true, nil
	}
	return false, []error{&InvalidFormatError{Value: f}}
}

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	names := make([]string, 0, len(allFormats))
	for _, f := range allFormats {
		names = append(names, string(f))
	}
	return fmt.Sprintf("invalid constraint set format %q (valid: %s)", e.Value, strings.Join(names, ", "))
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Marshal encodes s in format f. Equal sets always encode to equal bytes.
func Marshal(s *Set, f Format) ([]byte, error) {
	switch f {
	case FormatTOML:
		return toml.Marshal(s)
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatJSON:
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case FormatCUE:
		return marshalCUE(s)
	case FormatGradle:
		return marshalGradle(s), nil
	default:
		return nil, &InvalidFormatError{Value: f}
	}
}

// Encode writes s to w in format f.
func Encode(w io.Writer, s *Set, f Format) error {
	out, err := Marshal(s, f)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// Unmarshal decodes a set previously written by Marshal. The CUE and Gradle
// renderings are output-only.
func Unmarshal(data []byte, f Format) (*Set, error) {
	var s Set
	var err error
	switch f {
	case FormatTOML:
		err = toml.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatJSON:
		err = json.Unmarshal(data, &s)
	default:
		return nil, fmt.Errorf("%w: %s cannot be read back", ErrInvalidFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s constraint set: %w", f, err)
	}
	if s.Constraints == nil {
		s.Constraints = []Constraint{}
	}
	return &s, nil
}

func marshalCUE(s *Set) ([]byte, error) {
	v := cuecontext.New().Encode(s)
	if v.Err() != nil {
		return nil, v.Err()
	}
	out, err := format.Node(v.Syntax())
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func marshalGradle(s *Set) []byte {
	var b bytes.Buffer
	b.WriteString("dependencies {\n\tconstraints {\n")
	for _, d := range s.Dependencies() {
		b.WriteString("\t\t")
		b.WriteString(d.Notation())
		b.WriteString("\n")
	}
	b.WriteString("\t}\n}\n")
	return b.Bytes()
}
