// SPDX-License-Identifier: MPL-2.0

// Package config loads the buildconv tool configuration and the project
// properties a workspace is evaluated against.
//
// Tool configuration lives in config.cue under the user config directory
// (XDG on Linux, ~/Library/Application Support on macOS, %APPDATA% on
// Windows) or at an explicit --config path. The file is validated against an
// embedded CUE schema, merged into Viper over the defaults and finally
// overridden by BUILDCONV_* environment variables.
//
// Project properties come from a Java properties file, BUILDCONV_PROP_*
// environment variables and -P flags, in that order of precedence.
package config
