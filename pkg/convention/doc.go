// SPDX-License-Identifier: MPL-2.0

// Package convention resolves the effective build configuration of a module
// from the convention layer chain it applies.
//
// A layer extends at most one parent, so every chain is linear even when
// several layers share a parent. Resolution merges the chain root first and
// the module's own settings last. Scalars declared by a child replace the
// inherited value; lists documented as appending concatenate parent-then-child.
//
// All external signals (the integration activation property, the checkstyle
// tool version and similar) enter through Context, so resolution is pure.
package convention
