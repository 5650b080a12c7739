// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for buildconv.
//
// This package implements the Cobra command hierarchy: workspace evaluation
// (plan, resolve, tasks, manifest, publish-target), platform constraint sets
// and their lock file (bom, watch), repository checks (verify) and the
// supporting explain, init and config commands. Handlers run through App,
// which loads configuration and properties into a per-invocation session and
// maps failures to issue catalog entries and exit codes.
package cmd
