package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrValidation           = errors.New("validation failed")
	ErrPreconditionFailed   = errors.New("purchase status precondition failed")
	ErrInvalidTransition    = errors.New("invalid purchase status transition")
	ErrStateConflict        = errors.New("conflicting purchase state")
	ErrPricingNotFound      = errors.New("pricing not found")
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	ErrUpstream             = errors.New("upstream service unavailable")
	ErrMissingCorrelation   = errors.New("purchase id or gateway order id is required")
)

// ValidationError describes a rejected input field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}
