package services

import "fmt"

// EligibilityError is a validation failure carrying the human-readable
// reason verbatim (pool exhausted, not clocked in, ...). Callers render
// Reason directly.
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string { return e.Reason }

// AuthorizationError means the actor's role or team scope does not cover
// the target. Distinct from NotFoundError on purpose.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// ConflictError means a state-guarded update affected zero rows: the row
// is no longer in the state the transition requires.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func ErrEligibility(reason string) *EligibilityError {
	return &EligibilityError{Reason: reason}
}

func ErrAuthorization(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

func ErrConflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func ErrNotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
