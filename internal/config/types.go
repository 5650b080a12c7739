// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// OutputTable renders human-readable tables.
	OutputTable OutputFormat = "table"
	// OutputJSON renders indented JSON.
	OutputJSON OutputFormat = "json"
	// OutputYAML renders YAML.
	OutputYAML OutputFormat = "yaml"

	// LogLevelDebug logs everything.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs progress messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"

	// DefaultWorkspaceFile is looked up in the working directory.
	DefaultWorkspaceFile = "workspace.cue"
	// DefaultPropertiesFile holds project properties next to the workspace.
	DefaultPropertiesFile = "build.properties"
	// DefaultLocateTimeout bounds a single repository probe.
	DefaultLocateTimeout = 10 * time.Second
	// DefaultLocateConcurrency bounds concurrent repository probes.
	DefaultLocateConcurrency = 8
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLocateConfig is the sentinel error wrapped by InvalidLocateConfigError.
	ErrInvalidLocateConfig = errors.New("invalid locate config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// OutputFormat selects how commands render their results.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// LogLevel is the minimum level the CLI logger emits.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidLocateConfigError collects field errors of a LocateConfig.
	InvalidLocateConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the tool configuration.
	Config struct {
		// WorkspaceFile is the workspace definition evaluated by default.
		WorkspaceFile string `json:"workspace_file" mapstructure:"workspace_file"`
		// PropertiesFile is the project properties file. A missing file is not an error.
		PropertiesFile string `json:"properties_file" mapstructure:"properties_file"`
		// MetricsFile receives a Prometheus text exposition after every run when set.
		MetricsFile string `json:"metrics_file" mapstructure:"metrics_file"`
		// LockFile is where watch mode and `bom --write` persist constraint sets.
		LockFile string       `json:"lock_file" mapstructure:"lock_file"`
		Output   OutputConfig `json:"output" mapstructure:"output"`
		UI       UIConfig     `json:"ui" mapstructure:"ui"`
		Log      LogConfig    `json:"log" mapstructure:"log"`
		Locate   LocateConfig `json:"locate" mapstructure:"locate"`
	}

	// OutputConfig configures command output.
	OutputConfig struct {
		Format OutputFormat `json:"format" mapstructure:"format"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}

	// LogConfig configures the CLI logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// LocateConfig configures repository probing for `verify`.
	LocateConfig struct {
		Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
		Concurrency int           `json:"concurrency" mapstructure:"concurrency"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: table, json, yaml)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is known.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputTable, OutputJSON, OutputYAML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is known. Matching is case-insensitive.
func (l LogLevel) IsValid() (bool, []error) {
	switch LogLevel(strings.ToLower(string(l))) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// IsValid returns whether the LocateConfig has a positive timeout and
// concurrency.
func (c LocateConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("locate.timeout must be positive, got %s", c.Timeout))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("locate.concurrency must be at least 1, got %d", c.Concurrency))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidLocateConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidLocateConfigError.
func (e *InvalidLocateConfigError) Error() string {
	return fmt.Sprintf("invalid locate config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidLocateConfig for errors.Is() compatibility.
func (e *InvalidLocateConfigError) Unwrap() error { return ErrInvalidLocateConfig }

// IsValid returns whether every field of the Config is valid.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.WorkspaceFile) == "" {
		errs = append(errs, errors.New("workspace_file must not be empty"))
	}
	for _, check := range []func() (bool, []error){
		c.Output.Format.IsValid,
		c.UI.ColorScheme.IsValid,
		c.Log.Level.IsValid,
		c.Locate.IsValid,
	} {
		if valid, fieldErrs := check(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		WorkspaceFile:  DefaultWorkspaceFile,
		PropertiesFile: DefaultPropertiesFile,
		Output:         OutputConfig{Format: OutputTable},
		UI:             UIConfig{ColorScheme: ColorSchemeAuto},
		Log:            LogConfig{Level: LogLevelWarn},
		Locate: LocateConfig{
			Timeout:     DefaultLocateTimeout,
			Concurrency: DefaultLocateConcurrency,
		},
	}
}
