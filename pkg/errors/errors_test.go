package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to unwrap to the original error")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "booking not found",
			},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "save failed",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: save failed (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestConflictWithBooking(t *testing.T) {
	type booking struct{ ID string }
	occupying := &booking{ID: "abc"}

	err := ConflictWithBooking("Requested time overlaps an existing booking", occupying)

	if err.Code != CodeConflict {
		t.Fatalf("expected code %s, got %s", CodeConflict, err.Code)
	}

	got, ok := ConflictingBooking(err)
	if !ok {
		t.Fatalf("expected conflicting booking to be attached")
	}
	if got.(*booking).ID != "abc" {
		t.Errorf("expected booking abc, got %+v", got)
	}
}

func TestConflictingBooking_NotAConflict(t *testing.T) {
	if _, ok := ConflictingBooking(NotFound("Booking")); ok {
		t.Errorf("expected no conflicting booking on a NOT_FOUND error")
	}
	if _, ok := ConflictingBooking(Conflict("slot is being booked")); ok {
		t.Errorf("expected no conflicting booking when none was attached")
	}
	if _, ok := ConflictingBooking(errors.New("plain")); ok {
		t.Errorf("expected no conflicting booking on a plain error")
	}
}

func TestIsCode(t *testing.T) {
	conflictErr := Conflict("overlap")
	wrapped := fmt.Errorf("creating booking: %w", conflictErr)

	if !IsCode(conflictErr, CodeConflict) {
		t.Errorf("expected IsCode to match a direct AppError")
	}
	if !IsCode(wrapped, CodeConflict) {
		t.Errorf("expected IsCode to match through wrapping")
	}
	if IsCode(conflictErr, CodeValidation) {
		t.Errorf("expected IsCode to reject a different code")
	}
	if IsCode(errors.New("plain"), CodeConflict) {
		t.Errorf("expected IsCode to reject a non-AppError")
	}
}

func TestInvalidState(t *testing.T) {
	err := InvalidState("Booking is already cancelled")

	if err.Code != CodeInvalidState {
		t.Errorf("expected code %s, got %s", CodeInvalidState, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
}
