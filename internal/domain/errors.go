// Package domain defines core types, interfaces, and errors for the approval engine.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// CrossTenantAccessError is returned when a tenant-bound principal touches a
// resource owned by another tenant.
type CrossTenantAccessError struct {
	PrincipalTenantID string
	ResourceTenantID  string
}

func (e *CrossTenantAccessError) Error() string {
	return fmt.Sprintf("cross-tenant access denied: principal bound to tenant %q, resource belongs to tenant %q",
		e.PrincipalTenantID, e.ResourceTenantID)
}

// NotAuthorizedToApproveError is returned when the actor is not an approver
// for the request's employee at the requested stage.
type NotAuthorizedToApproveError struct {
	ActorID    string
	EmployeeID string
	Message    string
}

func (e *NotAuthorizedToApproveError) Error() string { return e.Message }

// InvalidStateTransitionError is returned when an action is attempted from a
// request state that does not permit it.
type InvalidStateTransitionError struct {
	From    RequestStatus
	Action  string
	Message string
}

func (e *InvalidStateTransitionError) Error() string { return e.Message }

// InsufficientBalanceError is returned when a vacation reservation would push
// used + pending days above the earned days for the year.
type InsufficientBalanceError struct {
	EmployeeID string
	Year       int
	Requested  int
	Available  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient vacation balance for %d: requested %d day(s), %d available",
		e.Year, e.Requested, e.Available)
}

// RequestNotFoundError indicates the leave/incident request does not exist.
type RequestNotFoundError struct {
	RequestID string
}

func (e *RequestNotFoundError) Error() string {
	return fmt.Sprintf("leave request %q not found", e.RequestID)
}

// EmployeeNotFoundError indicates the employee does not exist.
type EmployeeNotFoundError struct {
	EmployeeID string
}

func (e *EmployeeNotFoundError) Error() string {
	return fmt.Sprintf("employee %q not found", e.EmployeeID)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotAuthorizedToApprove creates a NotAuthorizedToApproveError.
func ErrNotAuthorizedToApprove(actorID, employeeID string) *NotAuthorizedToApproveError {
	return &NotAuthorizedToApproveError{
		ActorID:    actorID,
		EmployeeID: employeeID,
		Message:    "not authorized to approve requests for this employee",
	}
}

// ErrInvalidTransition creates an InvalidStateTransitionError with a formatted message.
func ErrInvalidTransition(from RequestStatus, action string, format string, args ...interface{}) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{From: from, Action: action, Message: fmt.Sprintf(format, args...)}
}
