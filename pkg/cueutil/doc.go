// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The workspace, module and tool configuration files all follow the same
// 3-step flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed workspace_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Workspace](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Workspace",
//	    cueutil.WithFilename("workspace.cue"),
//	    cueutil.WithFill("properties", props),
//	)
//	if err != nil {
//	    return nil, err  // Error includes CUE path for debugging
//	}
//	return result.Value, nil
package cueutil
