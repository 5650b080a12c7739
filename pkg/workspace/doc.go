// SPDX-License-Identifier: MPL-2.0

// Package workspace loads the CUE definition of a multi-module project: its
// group and version, convention layers, and modules.
//
// A workspace file may pull in further modules with doublestar include globs
// matching module.cue files. Built-in "common" and "library" layers are
// always available; a workspace layer with the same name replaces them.
//
// Project properties are filled into the top-level `properties` field of
// every file. A file that wants to reference them declares the field itself:
//
//	properties: [string]: string
//	version: properties["version"]
package workspace
