// Unified error handling for the nozzle wipe post-processor
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import "fmt"

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Transform errors
	ErrUnsupportedMode   ErrorCode = "UNSUPPORTED_MODE"
	ErrMissingCoordinate ErrorCode = "MISSING_COORDINATE"

	// Configuration errors
	ErrConfigSection ErrorCode = "CONFIG_SECTION"
	ErrConfigOption  ErrorCode = "CONFIG_OPTION"
	ErrConfigValue   ErrorCode = "CONFIG_VALUE"
	ErrProfileLoad   ErrorCode = "PROFILE_LOAD"
)

// TransformError is the unified error type for this module
type TransformError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Line is the 1-based input line number, when known
	Line int

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *TransformError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TransformError) Unwrap() error {
	return e.Err
}

// SetLine records the input line number
func (e *TransformError) SetLine(line int) *TransformError {
	e.Line = line
	return e
}

// New creates a new TransformError
func New(code ErrorCode, message string) *TransformError {
	return &TransformError{Code: code, Message: message}
}

// Wrap wraps an existing error with a code and message
func Wrap(err error, code ErrorCode, message string) *TransformError {
	return &TransformError{Code: code, Message: message, Err: err}
}

// UnsupportedModeError creates an error for a relative-positioning selector.
// The transform assumes absolute coordinates throughout, so this is fatal.
func UnsupportedModeError(cmd string, line int) *TransformError {
	return New(ErrUnsupportedMode, fmt.Sprintf("relative positioning (%s) is not supported", cmd)).SetLine(line)
}

// MissingCoordinateError creates an error for a record that lacks an
// expected planar coordinate
func MissingCoordinateError(cmd, letter string) *TransformError {
	if cmd == "" {
		cmd = "<none>"
	}
	return New(ErrMissingCoordinate, fmt.Sprintf("command '%s' missing coordinate %s", cmd, letter))
}

// ConfigSectionError creates an error for a missing profile section
func ConfigSectionError(section string) *TransformError {
	return New(ErrConfigSection, fmt.Sprintf("section '%s' not found", section))
}

// ConfigOptionError creates an error for a missing profile option
func ConfigOptionError(section, option string) *TransformError {
	return New(ErrConfigOption, fmt.Sprintf("option '%s' not found in section '%s'", option, section))
}

// ConfigValueError creates an error for an option that failed to parse or
// validate
func ConfigValueError(section, option, value, reason string) *TransformError {
	return New(ErrConfigValue, fmt.Sprintf("option '%s' in section '%s': invalid value '%s' (%s)", option, section, value, reason))
}

// ProfileLoadError creates an error for a profile file that could not be
// read or decoded
func ProfileLoadError(path string, err error) *TransformError {
	return Wrap(err, ErrProfileLoad, fmt.Sprintf("unable to load profile %s", path))
}

// Is checks if error matches the given error code
func Is(err error, code ErrorCode) bool {
	if terr, ok := err.(*TransformError); ok {
		return terr.Code == code
	}
	return false
}

// IsConfig checks if error is a configuration error
func IsConfig(err error) bool {
	return Is(err, ErrConfigSection) ||
		Is(err, ErrConfigOption) ||
		Is(err, ErrConfigValue) ||
		Is(err, ErrProfileLoad)
}
