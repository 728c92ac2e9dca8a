package errors

import (
	stderrors "errors"
	"fmt"
)

// CorpusError is the structured error type for corpus.
// It provides rich context for error handling, logging, and user presentation.
type CorpusError struct {
	// Code is the unique error code (e.g., "ERR_201_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Validation, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *CorpusError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CorpusError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with CorpusError.
func (e *CorpusError) Is(target error) bool {
	if t, ok := target.(*CorpusError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *CorpusError) WithDetail(key, value string) *CorpusError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *CorpusError) WithSuggestion(suggestion string) *CorpusError {
	e.Suggestion = suggestion
	return e
}

// New creates a new CorpusError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *CorpusError {
	return &CorpusError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a CorpusError from an existing error.
// The error's message becomes the CorpusError message.
func Wrap(code string, err error) *CorpusError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates an error for a missing collection, file, or path.
func NotFound(message string, cause error) *CorpusError {
	return New(ErrCodeNotFound, message, cause)
}

// DecodeError creates an error for a corrupt or unsupported bundle.
func DecodeError(message string, cause error) *CorpusError {
	return New(ErrCodeDecodeFailed, message, cause)
}

// Conflict creates an error for a duplicate catalog id.
func Conflict(message string, cause error) *CorpusError {
	return New(ErrCodeDuplicateID, message, cause)
}

// Validation creates an input validation error.
func Validation(message string, cause error) *CorpusError {
	return New(ErrCodeInvalidInput, message, cause)
}

// Timeout creates an error for an exceeded deadline.
// Timeouts are retryable.
func Timeout(message string, cause error) *CorpusError {
	return New(ErrCodeTimeout, message, cause)
}

// IO creates a filesystem-level error.
func IO(message string, cause error) *CorpusError {
	return New(ErrCodeIOFailure, message, cause)
}

// Internal creates an internal error.
func Internal(message string, cause error) *CorpusError {
	return New(ErrCodeInternal, message, cause)
}

// IsNotFound reports whether err is (or wraps) a NotFound error.
func IsNotFound(err error) bool {
	return hasCategoryCode(err, ErrCodeNotFound)
}

// IsDecodeError reports whether err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	return hasCategoryCode(err, ErrCodeDecodeFailed)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	return hasCategoryCode(err, ErrCodeDuplicateID)
}

// IsValidation reports whether err is (or wraps) any validation error.
func IsValidation(err error) bool {
	var ce *CorpusError
	if stderrors.As(err, &ce) {
		return ce.Category == CategoryValidation
	}
	return false
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	return hasCategoryCode(err, ErrCodeTimeout)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var ce *CorpusError
	if stderrors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// GetCode extracts the error code from a CorpusError.
// Returns empty string if not a CorpusError.
func GetCode(err error) string {
	var ce *CorpusError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// GetCategory extracts the category from a CorpusError.
// Returns empty string if not a CorpusError.
func GetCategory(err error) Category {
	var ce *CorpusError
	if stderrors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

func hasCategoryCode(err error, code string) bool {
	var ce *CorpusError
	if stderrors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
