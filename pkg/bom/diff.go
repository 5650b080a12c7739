// SPDX-License-Identifier: MPL-2.0

package bom

import (
	"fmt"
	"strings"
)

type (
	// Changes describes how a constraint set moved between two generations.
	Changes struct {
		Added   []Constraint
		Removed []Constraint
		Changed []Change
	}

	// Change is a constraint whose version moved.
	Change struct {
		Key  string
		From string
		To   string
	}
)

// Diff compares two constraint sets. A nil old set is treated as empty.
func Diff(old, current *Set) Changes {
	before := make(map[string]Constraint)
	if old != nil {
		for _, c := range old.Constraints {
			before[c.Key()] = c
		}
	}

	var ch Changes
	for _, c := range current.Constraints {
		prev, ok := before[c.Key()]
		switch {
		case !ok:
			ch.Added = append(ch.Added, c)
		case prev.Version != c.Version:
			ch.Changed = append(ch.Changed, Change{Key: c.Key(), From: prev.Version, To: c.Version})
		}
		delete(before, c.Key())
	}
	if old != nil {
		for _, c := range old.Constraints {
			if _, gone := before[c.Key()]; gone {
				ch.Removed = append(ch.Removed, c)
			}
		}
	}
	return ch
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// String summarizes the changes on one line.
func (c Changes) String() string {
	if c.Empty() {
		return "no changes"
	}
	var parts []string
	for _, a := range c.Added {
		parts = append(parts, "+"+a.Coordinate().String())
	}
	for _, r := range c.Removed {
		parts = append(parts, "-"+r.Key())
	}
	for _, m := range c.Changed {
		parts = append(parts, fmt.Sprintf("%s %s->%s", m.Key, m.From, m.To))
	}
	return strings.Join(parts, ", ")
}
