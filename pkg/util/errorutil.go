package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthenticated(message string) error {
	return NewDomainError("UNAUTHENTICATED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewAlreadyAssigned reports an employee already present on a ticket.
// Recoverable: the caller may retry with a different employee.
func NewAlreadyAssigned(employeeID string) error {
	return NewDomainError("ALREADY_ASSIGNED", "employee already assigned to ticket",
		http.StatusConflict, map[string]any{"employee_id": employeeID})
}

// NewNotAssigned reports an employee absent from a ticket's assignment set.
func NewNotAssigned(employeeID string) error {
	return NewDomainError("NOT_ASSIGNED", "employee not assigned to ticket",
		http.StatusConflict, map[string]any{"employee_id": employeeID})
}

// NewCapacityExceeded reports employees over the workload cap. Details carry
// each offending employee id with its current active-ticket count.
func NewCapacityExceeded(counts map[string]int) error {
	offenders := make(map[string]any, len(counts))
	for id, count := range counts {
		offenders[id] = count
	}
	return NewDomainError("CAPACITY_EXCEEDED", "employee workload cap exceeded",
		http.StatusConflict, map[string]any{"employees": offenders})
}

// NewInvalidTransition reports a status change the state machine rejects.
func NewInvalidTransition(from, to string) error {
	return NewDomainError("INVALID_TRANSITION", "invalid ticket status transition",
		http.StatusConflict, map[string]any{"from": from, "to": to})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
