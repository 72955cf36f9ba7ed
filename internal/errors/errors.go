package errors

import "fmt"

// ErrorCode represents a Vantiel engine error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrOnboardingRequired ErrorCode = "ONBOARDING_REQUIRED" // 409
	ErrEntryInvalid       ErrorCode = "ENTRY_INVALID"       // 422
	ErrSchemaMissing      ErrorCode = "SCHEMA_MISSING"      // 500 (startup-fatal)
	ErrSchemaInvalid      ErrorCode = "SCHEMA_INVALID"      // 500 (startup-fatal)
	ErrPersistenceFailed  ErrorCode = "PERSISTENCE_FAILED"  // 500
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// GameError represents a structured error with code, status, and details.
type GameError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *GameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *GameError) Unwrap() error {
	return e.Cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *GameError {
	return &GameError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing artifact or record.
func NewNotFound(identifier string) *GameError {
	return &GameError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewOnboardingRequired creates a 409 error when the player profile is
// incomplete and the prologue cannot start.
func NewOnboardingRequired(missing []string) *GameError {
	return &GameError{
		Code:    ErrOnboardingRequired,
		Status:  409,
		Message: fmt.Sprintf("new game requires player profile before prologue: %v", missing),
		Details: map[string]any{"missing_fields": missing},
	}
}

// NewEntryInvalid creates a 422 error when a journal entry fails the schema's
// required-field checks. The append is aborted; no partial line is written.
func NewEntryInvalid(msg string) *GameError {
	return &GameError{
		Code:    ErrEntryInvalid,
		Status:  422,
		Message: msg,
	}
}

// NewSchemaMissing creates a fatal configuration error for an absent schema
// document. An unvalidatable engine refuses to operate.
func NewSchemaMissing(path string) *GameError {
	return &GameError{
		Code:    ErrSchemaMissing,
		Status:  500,
		Message: fmt.Sprintf("schema missing: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewSchemaInvalid creates a fatal configuration error for an unparsable or
// malformed schema document.
func NewSchemaInvalid(path string, err error) *GameError {
	return &GameError{
		Code:    ErrSchemaInvalid,
		Status:  500,
		Message: fmt.Sprintf("schema invalid or unreadable: %s: %v", path, err),
		Details: map[string]any{"path": path},
		Cause:   err,
	}
}

// NewPersistenceFailed normalizes any failure of the write/append/verify
// sequence into a single error kind, so callers have one decision point:
// do not emit narrative output for a turn whose persistence is unconfirmed.
func NewPersistenceFailed(err error) *GameError {
	msg := "turn persistence could not be confirmed"
	if err != nil {
		msg = fmt.Sprintf("turn persistence could not be confirmed: %v", err)
	}
	return &GameError{
		Code:    ErrPersistenceFailed,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *GameError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &GameError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// Is checks if an error is a GameError with the given code.
func Is(err error, code ErrorCode) bool {
	if gErr, ok := err.(*GameError); ok {
		return gErr.Code == code
	}
	return false
}
