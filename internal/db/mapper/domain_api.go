// Package mapper converts between domain, database, and API layer types.
package mapper

import (
	"errors"
	"net/http"

	"hr-approvals/internal/domain"
)

// HTTPStatusFromDomainError maps domain errors to HTTP status codes.
func HTTPStatusFromDomainError(err error) int {
	status, _ := classify(err)
	return status
}

// ErrorCode returns the stable machine-readable code for err.
func ErrorCode(err error) string {
	_, code := classify(err)
	return code
}

func classify(err error) (int, string) {
	var (
		notFound     *domain.NotFoundError
		reqNotFound  *domain.RequestNotFoundError
		empNotFound  *domain.EmployeeNotFoundError
		accessDenied *domain.AccessDeniedError
		crossTenant  *domain.CrossTenantAccessError
		notApprover  *domain.NotAuthorizedToApproveError
		validation   *domain.ValidationError
		conflict     *domain.ConflictError
		transition   *domain.InvalidStateTransitionError
		insufficient *domain.InsufficientBalanceError
	)

	switch {
	case errors.As(err, &reqNotFound):
		return http.StatusNotFound, "REQUEST_NOT_FOUND"
	case errors.As(err, &empNotFound):
		return http.StatusNotFound, "EMPLOYEE_NOT_FOUND"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &crossTenant):
		return http.StatusForbidden, "CROSS_TENANT_ACCESS"
	case errors.As(err, &notApprover):
		return http.StatusForbidden, "NOT_AUTHORIZED_TO_APPROVE"
	case errors.As(err, &accessDenied):
		return http.StatusForbidden, "ACCESS_DENIED"
	case errors.As(err, &validation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.As(err, &transition):
		return http.StatusConflict, "INVALID_STATE_TRANSITION"
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"
	case errors.As(err, &conflict):
		return http.StatusConflict, "CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
