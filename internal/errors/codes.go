// Package errors provides structured error handling for corpus.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Validation errors (bad globs, invalid encoding combinations)
//   - 2XX: IO errors (missing files, permissions, corrupt bundles)
//   - 3XX: Network errors (fetch failures, timeouts)
//   - 4XX: Conflict errors (duplicate catalog ids)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates network-related errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryConflict indicates conflicting state errors.
	CategoryConflict Category = "CONFLICT"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Validation errors (100-199)
	ErrCodeInvalidInput    = "ERR_101_INVALID_INPUT"
	ErrCodeInvalidGlob     = "ERR_102_INVALID_GLOB"
	ErrCodeInvalidEncoding = "ERR_103_INVALID_ENCODING"
	ErrCodeInvalidRange    = "ERR_104_INVALID_RANGE"

	// IO errors (200-299)
	ErrCodeNotFound       = "ERR_201_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeIOFailure      = "ERR_203_IO_FAILURE"
	ErrCodeDiskFull       = "ERR_204_DISK_FULL"
	ErrCodeDecodeFailed   = "ERR_205_DECODE_FAILED"

	// Network errors (300-399)
	ErrCodeTimeout     = "ERR_301_TIMEOUT"
	ErrCodeFetchFailed = "ERR_302_FETCH_FAILED"

	// Conflict errors (400-499)
	ErrCodeDuplicateID = "ERR_401_DUPLICATE_ID"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "201" from "ERR_201_NOT_FOUND".
	switch code[4] {
	case '1':
		return CategoryValidation
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryConflict
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeDiskFull:
		return SeverityFatal
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeTimeout, ErrCodeFetchFailed:
		return true
	default:
		return false
	}
}
