// SPDX-License-Identifier: MPL-2.0

// Package testutil holds test helpers: environment isolation, working
// directory changes and workspace fixtures written to temporary directories.
package testutil
