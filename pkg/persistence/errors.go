// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations use.
var (
	// ErrWorkflowNotFound indicates no workflow exists for the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrUserNotFound indicates no user exists for the given identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientCredits indicates a balance adjustment would drop the
	// balance below zero.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// StoreError wraps a storage failure with the operation and entity involved.
type StoreError struct {
	Op       string // Operation being performed (e.g., "ByID", "Save", "Insert")
	Entity   string // Entity kind ("workflow", "user", "execution")
	EntityID string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.EntityID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a storage error with context.
func NewStoreError(op, entity, entityID string, err error) *StoreError {
	return &StoreError{Op: op, Entity: entity, EntityID: entityID, Err: err}
}

// IsWorkflowNotFound checks whether an error indicates a missing workflow.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsUserNotFound checks whether an error indicates a missing user.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
