package domain

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed input. It is rejected before any write
// and is never retried automatically.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// InvalidTransitionError indicates an attempted state change that is not in
// the transition table. It carries the current and requested states so the
// caller can surface both.
type InvalidTransitionError struct {
	Entity    string
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %q to %q", e.Entity, e.Current, e.Requested)
}

// NewInvalidTransitionError creates a new InvalidTransitionError.
func NewInvalidTransitionError(entity, current, requested string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, Current: current, Requested: requested}
}

// ConflictError indicates a concurrent claim on the same resource. The caller
// may retry with fresh state; conflicting writes are never silently merged.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// NotFoundError indicates the requested entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConsistencyViolationError indicates observed data that breaks an invariant,
// e.g. a room flagged reserved with no referencing booking, or more than one
// active booking on a room. It is never auto-healed; it is logged and surfaced
// for manual reconciliation.
type ConsistencyViolationError struct {
	Message string
}

func (e *ConsistencyViolationError) Error() string {
	return e.Message
}

// NewConsistencyViolationError creates a new ConsistencyViolationError.
func NewConsistencyViolationError(message string) *ConsistencyViolationError {
	return &ConsistencyViolationError{Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConsistencyViolation reports whether err is a ConsistencyViolationError.
func IsConsistencyViolation(err error) bool {
	var target *ConsistencyViolationError
	return errors.As(err, &target)
}
