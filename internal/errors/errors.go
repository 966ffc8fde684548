// Package errors provides structured error types for the Intakegrid system.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryParse      ErrorCategory = "PARSE"
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryDuplicate  ErrorCategory = "DUPLICATE"
	ErrCategoryNaming     ErrorCategory = "NAMING"
	ErrCategoryGrid       ErrorCategory = "GRID"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Parse codes
	CodeInvalidJSON = "INVALID_JSON"

	// Validation codes
	CodeMissingTemplateName = "MISSING_TEMPLATE_NAME"
	CodeMissingSections     = "MISSING_SECTIONS"

	// Duplicate codes
	CodeDuplicateQuestionID = "DUPLICATE_QUESTION_ID"

	// Naming codes
	CodeNameLookupFailed = "NAME_LOOKUP_FAILED"

	// Grid codes
	CodeGridWriteFailed = "GRID_WRITE_FAILED"
	CodeGridNotFound    = "GRID_NOT_FOUND"
	CodeLockFailed      = "LOCK_FAILED"

	// Storage codes
	CodeSnapshotFailed = "SNAPSHOT_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// IntakeError is the structured error type used throughout the system.
type IntakeError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *IntakeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *IntakeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *IntakeError) Is(target error) bool {
	var t *IntakeError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new IntakeError.
func New(category ErrorCategory, code, message string) *IntakeError {
	return &IntakeError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new IntakeError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *IntakeError {
	return &IntakeError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *IntakeError) WithDetails(details map[string]interface{}) *IntakeError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not an IntakeError.
func GetCategory(err error) ErrorCategory {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not an IntakeError.
func GetCode(err error) string {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// isRetryable determines if an error code is retryable. Import failures are
// terminal for the invocation; only snapshot uploads are worth retrying, and
// those retries happen inside the storage layer.
func isRetryable(category ErrorCategory, code string) bool {
	return category == ErrCategoryStorage && code == CodeSnapshotFailed
}

// Convenience constructors for common errors.

func NewParseError(message string, cause error) *IntakeError {
	return Wrap(ErrCategoryParse, CodeInvalidJSON, message, cause)
}

func NewValidationError(code, message string) *IntakeError {
	return New(ErrCategoryValidation, code, message)
}

func NewDuplicateError(message string, ids []string) *IntakeError {
	e := New(ErrCategoryDuplicate, CodeDuplicateQuestionID, message)
	e.Details = map[string]interface{}{"question_ids": ids}
	return e
}

func NewNamingError(message string, cause error) *IntakeError {
	return Wrap(ErrCategoryNaming, CodeNameLookupFailed, message, cause)
}

func NewGridError(code, message string, cause error) *IntakeError {
	return Wrap(ErrCategoryGrid, code, message, cause)
}

func NewStorageError(message string, cause error) *IntakeError {
	return Wrap(ErrCategoryStorage, CodeSnapshotFailed, message, cause)
}

func NewInternalError(message string, cause error) *IntakeError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
