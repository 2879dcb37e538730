package services

import (
	"fmt"
	"strings"
)

// FieldViolation names a single invalid input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed or missing input. It aggregates
// every violated field so callers can re-prompt in one round trip.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

func newValidationError(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// HotelNotFoundError reports an absent hotel.
type HotelNotFoundError struct {
	ID int
}

func (e *HotelNotFoundError) Error() string {
	return fmt.Sprintf("hotel not found with ID: %d", e.ID)
}

// BookingNotFoundError reports an absent booking.
type BookingNotFoundError struct {
	ID int
}

func (e *BookingNotFoundError) Error() string {
	return fmt.Sprintf("booking not found with ID: %d", e.ID)
}

// UnauthorizedError reports that the actor may not perform an action.
// Action holds a human-readable description for error surfacing; the
// message never reveals whether the resource exists.
type UnauthorizedError struct {
	Action string
}

func (e *UnauthorizedError) Error() string {
	return "you are not authorized to " + e.Action
}

// InvalidBookingError reports a booking that violates a domain rule:
// a past check-in, an inverted range, or a date conflict.
type InvalidBookingError struct {
	Reason string
}

func (e *InvalidBookingError) Error() string {
	return e.Reason
}

// BookingCancellationError reports a cancellation attempted outside
// the allowed window.
type BookingCancellationError struct {
	Reason string
}

func (e *BookingCancellationError) Error() string {
	return e.Reason
}
