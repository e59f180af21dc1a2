package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not found", ErrNotFound},
		{"already exists", ErrAlreadyExists},
		{"validation", ErrValidation},
		{"precondition", ErrPreconditionFailed},
		{"invalid transition", ErrInvalidTransition},
		{"state conflict", ErrStateConflict},
		{"pricing", ErrPricingNotFound},
		{"gateway config", ErrGatewayNotConfigured},
		{"upstream", ErrUpstream},
		{"correlation", ErrMissingCorrelation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("create order: %w", Invalid("packageSlug", "is required"))
	if !stdErrors.Is(err, ErrValidation) {
		t.Fatalf("expected wrapped validation error to match ErrValidation")
	}
	var ve ValidationError
	if !stdErrors.As(err, &ve) || ve.Field != "packageSlug" {
		t.Fatalf("expected ValidationError for packageSlug, got %v", err)
	}
	if got := ve.Error(); got != "packageSlug: is required" {
		t.Fatalf("unexpected message %q", got)
	}
	if stdErrors.Is(err, ErrNotFound) {
		t.Fatalf("validation error must not match ErrNotFound")
	}
}
