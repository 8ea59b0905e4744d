package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidSortMode           = NewDomainError(ErrCodeValidation, "invalid sort mode")
	ErrInvalidEmbeddingJobStatus = NewDomainError(ErrCodeValidation, "invalid embedding job status")
	ErrInvalidGuardrailType      = NewDomainError(ErrCodeValidation, "invalid guardrail config type")
	ErrInvalidSuggestionType     = NewDomainError(ErrCodeValidation, "invalid suggestion type")
	ErrMissingRequiredField      = NewDomainError(ErrCodeValidation, "missing required field")
	ErrBlankSearchQuery          = NewDomainError(ErrCodeValidation, "search query cannot be blank")
)

// Not found errors
var (
	ErrPromptNotFound          = NewDomainError(ErrCodeNotFound, "prompt not found")
	ErrPromptVersionNotFound   = NewDomainError(ErrCodeNotFound, "prompt version not found")
	ErrCategoryNotFound        = NewDomainError(ErrCodeNotFound, "category not found")
	ErrThemeNotFound           = NewDomainError(ErrCodeNotFound, "theme not found")
	ErrLibraryNotFound         = NewDomainError(ErrCodeNotFound, "library not found")
	ErrAPIKeyNotFound          = NewDomainError(ErrCodeNotFound, "api key not found")
	ErrGuardrailConfigNotFound = NewDomainError(ErrCodeNotFound, "guardrail config not found")
)

// Already exists errors
var (
	ErrCategoryAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "category with this name already exists")
	ErrLibraryAlreadyExists  = NewDomainError(ErrCodeAlreadyExists, "library already exists")
	ErrAPIKeyAlreadyExists   = NewDomainError(ErrCodeAlreadyExists, "api key already exists")
)

// Conflict errors
var (
	ErrVersionConflict = NewDomainError(ErrCodeConflict, "prompt was modified by another request")
)

// Authorization errors
var (
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Operation errors
var (
	ErrPromptInactive        = NewDomainError(ErrCodeInvalidOperation, "prompt has been deleted")
	ErrBuiltInThemeImmutable = NewDomainError(ErrCodeInvalidOperation, "built-in theme cannot be deleted")
	ErrAssistNotConfigured   = NewDomainError(ErrCodeInvalidOperation, "ai assistance is not configured")
	ErrExportNotConfigured   = NewDomainError(ErrCodeInvalidOperation, "export storage is not configured")
	ErrRateLimitExceeded     = NewDomainError(ErrCodeRateLimited, "rate limit exceeded, retry later")
)
