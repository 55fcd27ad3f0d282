// Package errors provides unified error handling across the dotprompt system.
//
// Every failure surfaced by the parsing, rendering, and validation layers is
// represented as an *AppError carrying a stable machine-readable code, a severity,
// and (where known) the 1-based source line it refers to. The same codes appear in
// validation reports, so a caller can match on errors.Code regardless of whether a
// problem arrived as a returned error or as a report entry.
package errors

import (
	"fmt"
)

// ErrorCode identifies a class of parse or validation failure.
type ErrorCode string

const (
	// Fatal parse errors — structural problems that abort parsing.
	ErrCodeEmptyDocument         ErrorCode = "EMPTY_DOCUMENT"
	ErrCodeInvalidSectionOrder   ErrorCode = "INVALID_SECTION_ORDER"
	ErrCodeUnknownSection        ErrorCode = "UNKNOWN_SECTION"
	ErrCodeDuplicateSection      ErrorCode = "DUPLICATE_SECTION"
	ErrCodeContentBeforeMetadata ErrorCode = "CONTENT_BEFORE_METADATA"
	ErrCodeMissingContentSection ErrorCode = "MISSING_CONTENT_SECTION"
	ErrCodeDuplicateKey          ErrorCode = "DUPLICATE_KEY"

	// Semantic errors reported by validation.
	ErrCodeMissingVersionField ErrorCode = "MISSING_VERSION_FIELD"

	// Warning codes — recorded in validation reports, never fatal.
	ErrCodeMalformedEntry      ErrorCode = "MALFORMED_ENTRY"
	ErrCodeUnterminatedComment ErrorCode = "UNTERMINATED_COMMENT"
	ErrCodeUnresolvedVariable  ErrorCode = "UNRESOLVED_VARIABLE"
	ErrCodeUnbalancedLiteral   ErrorCode = "UNBALANCED_LITERAL"
	ErrCodeUnusedDefault       ErrorCode = "UNUSED_DEFAULT"
	ErrCodeVersionFieldAlias   ErrorCode = "VERSION_FIELD_ALIAS"

	// Infrastructure errors from the surrounding tooling.
	ErrCodeStorageFailure  ErrorCode = "STORAGE_FAILURE"
	ErrCodeFileNotFound    ErrorCode = "FILE_NOT_FOUND"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeInvalidCommand  ErrorCode = "INVALID_COMMAND"
	ErrCodeInternalError   ErrorCode = "INTERNAL_ERROR"
)

// ErrorSeverity represents the severity level of an error.
type ErrorSeverity string

const (
	SeverityInfo    ErrorSeverity = "info"
	SeverityWarning ErrorSeverity = "warning"
	SeverityError   ErrorSeverity = "error"
)

// ErrorCategory represents the category of an error.
type ErrorCategory string

const (
	CategoryParse      ErrorCategory = "parse"
	CategoryValidation ErrorCategory = "validation"
	CategoryStorage    ErrorCategory = "storage"
	CategoryCommand    ErrorCategory = "command"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error.
type AppError struct {
	Code     ErrorCode     `json:"code"`
	Message  string        `json:"message"`
	Details  string        `json:"details,omitempty"`
	Line     int           `json:"line,omitempty"` // 1-based source line, 0 when unknown
	Severity ErrorSeverity `json:"severity"`
	Category ErrorCategory `json:"category"`
	Cause    error         `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var msg string
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s [line %d]", msg, e.Line)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *AppError with the same code, so callers can
// match with errors.Is against sentinel values like NewAppError(code, "").
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithLine records the 1-based source line the error refers to.
func (e *AppError) WithLine(line int) *AppError {
	e.Line = line
	return e
}

// NewAppError creates a new application error.
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:     code,
		Message:  message,
		Severity: severity,
		Category: category,
	}
}

// Wrap wraps an existing error with application error context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:     code,
		Message:  message,
		Severity: severity,
		Category: category,
		Cause:    err,
	}
}

// categorizeError determines the category and severity based on error code.
func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeEmptyDocument, ErrCodeInvalidSectionOrder, ErrCodeUnknownSection,
		ErrCodeDuplicateSection, ErrCodeContentBeforeMetadata,
		ErrCodeMissingContentSection, ErrCodeDuplicateKey:
		return CategoryParse, SeverityError

	case ErrCodeMissingVersionField:
		return CategoryValidation, SeverityError
	case ErrCodeMalformedEntry, ErrCodeUnterminatedComment, ErrCodeUnresolvedVariable,
		ErrCodeUnbalancedLiteral, ErrCodeUnusedDefault, ErrCodeVersionFieldAlias:
		return CategoryValidation, SeverityWarning

	case ErrCodeStorageFailure:
		return CategoryStorage, SeverityError
	case ErrCodeFileNotFound:
		return CategoryStorage, SeverityInfo

	case ErrCodeCommandNotFound:
		return CategoryCommand, SeverityInfo
	case ErrCodeInvalidCommand, ErrCodeInvalidInput:
		return CategoryCommand, SeverityError

	default:
		return CategorySystem, SeverityError
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError extracts an AppError from an error, or converts it to one.
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// Common error constructors for frequently used errors.

func ParseError(code ErrorCode, line int, format string, args ...interface{}) *AppError {
	return NewAppError(code, fmt.Sprintf(format, args...)).WithLine(line)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func StorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, fmt.Sprintf("Storage operation failed: %s", operation))
}

func CommandNotFoundError(command string) *AppError {
	return NewAppError(ErrCodeCommandNotFound, fmt.Sprintf("Command '%s' not found", command))
}

func InvalidCommandError(command string, reason string) *AppError {
	return NewAppError(ErrCodeInvalidCommand, fmt.Sprintf("Invalid command '%s': %s", command, reason))
}
