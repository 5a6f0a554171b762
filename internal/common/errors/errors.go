// Package errors provides standardized error handling for catalog loading and dialogue jobs.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Catalog (data) errors. These are fatal to engine construction.
const (
	ErrCodeCatalogNotFound     ErrorCode = "CATALOG_NOT_FOUND"
	ErrCodeCatalogMalformed    ErrorCode = "CATALOG_MALFORMED"
	ErrCodeCatalogInvalid      ErrorCode = "CATALOG_INVALID"
	ErrCodeCatalogSourceFailed ErrorCode = "CATALOG_SOURCE_FAILED"
)

// Dialogue job errors
const (
	ErrCodeInvalidTurnInput ErrorCode = "INVALID_TURN_INPUT"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeEngineFailed     ErrorCode = "ENGINE_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError by code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *StandardError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    string(e.Code),
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.Metadata {
		vars[k] = v
	}
	return vars
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCatalogNotFoundError reports a missing catalog source.
func NewCatalogNotFoundError(source string, err error) *StandardError {
	details := fmt.Sprintf("source: %s", source)
	if err != nil {
		details = fmt.Sprintf("source: %s, error: %s", source, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeCatalogNotFound,
		Message:   "Intent catalog not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCatalogMalformedError reports a catalog that could not be decoded.
func NewCatalogMalformedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogMalformed,
		Message:   "Intent catalog is malformed",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCatalogInvalidError reports a decoded catalog that violates its constraints.
func NewCatalogInvalidError(violations []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Intent catalog failed validation",
		Details:   strings.Join(violations, "; "),
		Retryable: false,
		Metadata:  map[string]interface{}{"violations": violations},
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogSourceFailedError reports a transient failure reading a remote catalog.
func NewCatalogSourceFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogSourceFailed,
		Message:   "Intent catalog source unavailable",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidTurnInputError reports a job without a usable message.
func NewInvalidTurnInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTurnInput,
		Message:   "Invalid dialogue turn input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError reports an unknown conversation session.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Conversation session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineFailedError reports a failure constructing a dialogue engine for a session.
func NewEngineFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineFailed,
		Message:   "Dialogue engine unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf returns the error code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsDataError reports whether err is a catalog data error.
func IsDataError(err error) bool {
	var stdErr *StandardError
	if !stderrors.As(err, &stdErr) {
		return false
	}
	return GetErrorCategory(stdErr.Code) == "CATALOG"
}

// GetRetryCount returns the recommended job retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogSourceFailed:
		return 3
	case ErrCodeEngineFailed:
		return 1
	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "TURN"):
		return "DIALOGUE"
	case strings.Contains(codeStr, "ENGINE"):
		return "ENGINE"
	default:
		return "OTHER"
	}
}
