package models

import "fmt"

// ValidationError rejects malformed or out-of-range input before any mutation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError rejects an operation the caller is not allowed to perform.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func NewAuthorizationError(format string, args ...interface{}) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a referenced task, group or entry as absent.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}
