package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// ValidationError reports a field-level validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AccessDeniedError reports a security or facility access requirement that the
// owner does not satisfy
type AccessDeniedError struct {
	*DomainError
	Requirement string
}

func NewAccessDeniedError(requirement string) *AccessDeniedError {
	return &AccessDeniedError{
		DomainError: &DomainError{Message: fmt.Sprintf("access denied: requirement %q not met", requirement)},
		Requirement: requirement,
	}
}
