// SPDX-License-Identifier: MPL-2.0

package bom

import (
	"cmp"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Lock holds the constraint sets of every platform module of a workspace,
// sorted by platform name.
type Lock struct {
	Sets []*Set `json:"boms" yaml:"boms" toml:"bom"`
}

// NewLock returns a lock over sets, sorted by platform.
func NewLock(sets []*Set) *Lock {
	sorted := slices.Clone(sets)
	slices.SortFunc(sorted, func(a, b *Set) int { return cmp.Compare(a.Platform, b.Platform) })
	return &Lock{Sets: sorted}
}

// Set returns the constraint set of platform.
func (l *Lock) Set(platform string) (*Set, bool) {
	for _, s := range l.Sets {
		if s.Platform == platform {
			return s, true
		}
	}
	return nil, false
}

// FormatForPath infers a lock format from the file extension. Unknown
// extensions use TOML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// MarshalLock encodes l. Only the formats Unmarshal can read back are
// accepted.
func MarshalLock(l *Lock, f Format) ([]byte, error) {
	switch f {
	case FormatTOML:
		return toml.Marshal(l)
	case FormatYAML:
		return yaml.Marshal(l)
	case FormatJSON:
		out, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %s is not a lock format", ErrInvalidFormat, f)
	}
}

// UnmarshalLock decodes a lock written by MarshalLock.
func UnmarshalLock(data []byte, f Format) (*Lock, error) {
	var l Lock
	var err error
	switch f {
	case FormatTOML:
		err = toml.Unmarshal(data, &l)
	case FormatYAML:
		err = yaml.Unmarshal(data, &l)
	case FormatJSON:
		err = json.Unmarshal(data, &l)
	default:
		return nil, fmt.Errorf("%w: %s is not a lock format", ErrInvalidFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s lock: %w", f, err)
	}
	for _, s := range l.Sets {
		if s.Constraints == nil {
			s.Constraints = []Constraint{}
		}
	}
	return &l, nil
}

// DiffLock compares two locks platform by platform. Platforms missing from
// old count as entirely added; platforms missing from current are reported
// in removed.
func DiffLock(old, current *Lock) (changes map[string]Changes, removed []string) {
	changes = make(map[string]Changes)
	for _, s := range current.Sets {
		var prev *Set
		if old != nil {
			prev, _ = old.Set(s.Platform)
		}
		if ch := Diff(prev, s); !ch.Empty() {
			changes[s.Platform] = ch
		}
	}
	if old != nil {
		for _, s := range old.Sets {
			if _, ok := current.Set(s.Platform); !ok {
				removed = append(removed, s.Platform)
			}
		}
	}
	return changes, removed
}
