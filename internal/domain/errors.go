package domain

import "errors"

var (
	// ErrNotFound signals a referenced user or organisation is absent.
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals a uniqueness violation (duplicate email or membership).
	ErrConflict = errors.New("record already exists")
	// ErrForbidden signals an authenticated actor without the required membership.
	ErrForbidden = errors.New("access denied")
	// ErrAuthentication covers both unknown-email and wrong-password login
	// failures so callers cannot tell the two apart.
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidToken signals a malformed, tampered, or expired session token.
	ErrInvalidToken = errors.New("invalid token")
)

// FieldError reports a validation failure for a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates per-field failures. Validation is rejected
// before any store access.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Error()
}

// NewValidationError builds a ValidationError from field errors.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}
