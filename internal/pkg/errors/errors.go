// Package errors provides custom error types and error handling utilities.
package errors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	// Startup errors, fatal before any dispatch.
	CodeConfig   = "CONFIG_ERROR"
	CodeNotFound = "NOT_FOUND"

	// Per-record errors, skipped with a warning.
	CodeDataset = "DATASET_ERROR"

	// Per-pair errors, isolated and recovered during a run.
	CodeSearchFailed = "SEARCH_FAILED"
	CodeGradeFailed  = "GRADE_FAILED"
	CodeJudgeError   = "JUDGE_ERROR"
	CodeRateLimited  = "RATE_LIMITED"
	CodeTimeout      = "TIMEOUT"

	CodeInternal = "INTERNAL_ERROR"
)

// AppError represents an application error with code and details.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError.
func Wrap(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetail adds a single detail to the error.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Convenience constructors.

// ConfigError creates a configuration error. Configuration errors are
// fatal and surface before any dispatch begins.
func ConfigError(message string) *AppError {
	return New(CodeConfig, message)
}

// NotFoundError creates a not found error.
func NotFoundError(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// DatasetError creates an error for a malformed query record.
func DatasetError(message string, err error) *AppError {
	return Wrap(CodeDataset, message, err)
}

// SearchError wraps a failed searcher call.
func SearchError(searcher string, err error) *AppError {
	return Wrap(CodeSearchFailed, "search failed", err).WithDetail("searcher", searcher)
}

// GradeError wraps a failed grading attempt.
func GradeError(message string, err error) *AppError {
	return Wrap(CodeGradeFailed, message, err)
}

// JudgeError wraps a judge API or response-parsing failure.
func JudgeError(message string, err error) *AppError {
	return Wrap(CodeJudgeError, message, err)
}

// TimeoutError creates a timeout error for a specific operation.
func TimeoutError(operation string) *AppError {
	message := "operation timed out"
	if operation != "" {
		message = fmt.Sprintf("%s timed out", operation)
	}
	return New(CodeTimeout, message)
}

// InternalError creates an internal error.
func InternalError(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// Code returns the AppError code of err, or CodeInternal for foreign errors.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsConfig checks if error is a configuration error.
func IsConfig(err error) bool {
	return Is(err, CodeConfig)
}

// IsDataset checks if error is a dataset record error.
func IsDataset(err error) bool {
	return Is(err, CodeDataset)
}
