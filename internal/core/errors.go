// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Input errors
	ErrMissingColumns = &Error{Code: "MISSING_COLUMNS", Message: "bar data is missing required columns"}
	ErrNoData         = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrDataLoad       = &Error{Code: "DATA_LOAD", Message: "loading bar data failed"}

	// Strategy errors
	ErrStrategyFailed  = &Error{Code: "STRATEGY_FAILED", Message: "strategy signal generation failed"}
	ErrUnknownStrategy = &Error{Code: "UNKNOWN_STRATEGY", Message: "unknown strategy"}
	ErrInvalidParam    = &Error{Code: "INVALID_PARAM", Message: "invalid strategy parameter"}

	// Execution errors
	ErrUnsupportedAction = &Error{Code: "UNSUPPORTED_ACTION", Message: "unsupported order action"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Output errors
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archiving result failed"}
)
