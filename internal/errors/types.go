package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeDiscovery ErrorType = "discovery"
	ErrorTypeIO        ErrorType = "io"
	ErrorTypeRender    ErrorType = "render"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeWatch     ErrorType = "watch"
	ErrorTypeInternal  ErrorType = "internal"
)

// Error codes used across the task.
const (
	CodeGlobExpand   = "GLOB_EXPAND"
	CodeGlobPattern  = "GLOB_PATTERN"
	CodeReadFile     = "READ_FILE"
	CodeWriteFile    = "WRITE_FILE"
	CodeMkdir        = "MKDIR"
	CodeListDir      = "LIST_DIR"
	CodeRender       = "RENDER"
	CodeMinify       = "MINIFY"
	CodeInvalidValue = "INVALID_VALUE"
	CodeWatchStart   = "WATCH_START"
)

// TaskError is a structured error type with context.
type TaskError struct {
	Type       ErrorType
	Code       string
	Message    string
	Cause      error
	FilePath   string
	Diagnostic *Diagnostic
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Diagnostic != nil {
		parts = append(parts, e.Diagnostic.Location())
	} else if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *TaskError) Is(target error) bool {
	var t *TaskError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithPath adds the file the error relates to.
func (e *TaskError) WithPath(path string) *TaskError {
	e.FilePath = path

	return e
}

// NewDiscoveryError creates an error for a failed input pattern expansion.
func NewDiscoveryError(code, pattern string, cause error) *TaskError {
	return &TaskError{
		Type:     ErrorTypeDiscovery,
		Code:     code,
		Message:  fmt.Sprintf("expanding input pattern %q", pattern),
		Cause:    cause,
		FilePath: pattern,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *TaskError {
	return &TaskError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewRenderError creates a render error carrying a diagnostic.
func NewRenderError(code string, diag *Diagnostic) *TaskError {
	e := &TaskError{
		Type:       ErrorTypeRender,
		Code:       code,
		Message:    "stylesheet compilation failed",
		Diagnostic: diag,
	}
	if diag != nil {
		e.FilePath = diag.File
		if diag.Message != "" {
			e.Message = diag.Message
		}
	}

	return e
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *TaskError {
	return &TaskError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewWatchError creates an error for a watch subscription that could not start.
func NewWatchError(code, message string, cause error) *TaskError {
	return &TaskError{
		Type:    ErrorTypeWatch,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func isType(err error, t ErrorType) bool {
	var te *TaskError
	if errors.As(err, &te) {
		return te.Type == t
	}

	return false
}

// IsDiscoveryError checks if an error came from input pattern expansion.
func IsDiscoveryError(err error) bool {
	return isType(err, ErrorTypeDiscovery)
}

// IsIOError checks if an error is a read or write failure.
func IsIOError(err error) bool {
	return isType(err, ErrorTypeIO)
}

// IsRenderError checks if an error is a stylesheet compilation failure.
func IsRenderError(err error) bool {
	return isType(err, ErrorTypeRender)
}

// IsConfigError checks if an error is configuration related.
func IsConfigError(err error) bool {
	return isType(err, ErrorTypeConfig)
}

// IsWatchError checks if an error came from the change subscription.
func IsWatchError(err error) bool {
	return isType(err, ErrorTypeWatch)
}

// DiagnosticOf returns the diagnostic attached to err, if any.
func DiagnosticOf(err error) (*Diagnostic, bool) {
	var te *TaskError
	if errors.As(err, &te) && te.Diagnostic != nil {
		return te.Diagnostic, true
	}

	return nil, false
}
