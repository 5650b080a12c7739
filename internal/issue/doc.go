// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog behind
// `buildconv explain`.
//
// Each catalog entry is Markdown rendered with glamour; an ActionableError
// may point at one so the CLI can tell the user where to read more.
package issue
