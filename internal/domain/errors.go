package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrUnauthenticated     = errors.New("no authenticated principal")
	ErrRequestNotFound     = errors.New("service request not found")
	ErrMaintenanceNotFound = errors.New("maintenance record not found")
	ErrEquipmentNotFound   = errors.New("equipment not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrRequestNotApproved  = errors.New("service request is not approved")
)

// ForbiddenError is returned when the principal lacks the role or ownership
// required for an operation.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

// ValidationError is returned when a payload fails field constraints. It is
// always detected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// TransitionError is returned when a state machine rejects the requested
// status change. Event and Current are plain strings so both the request and
// the maintenance machine can share the type.
type TransitionError struct {
	Event   string
	Current string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// ConflictError is returned when an optimistic concurrency check fails: the
// entity changed between read and write, so the caller must re-read and retry.
type ConflictError struct {
	Entity string
	ID     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent update conflict on %s %q", e.Entity, e.ID)
}
